package crm

import (
	"math"
	"strconv"
	"strings"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// CRM endpoints disagree on field names per entity shape. Each profile
// field resolves from an ordered candidate list; the first non-empty
// key wins.
var (
	idKeys     = []string{"id", "ID", "lead_id", "customer_id"}
	nameKeys   = []string{"name", "full_name", "customer_name", "contact_name"}
	emailKeys  = []string{"email", "email_address", "contact_email"}
	phoneKeys  = []string{"phone", "mobile", "cell", "cellphone", "contact_number", "phone_number", "whatsapp"}
	streetKeys = []string{"street", "address", "street_1", "address_1"}
	cityKeys   = []string{"city", "town"}
	zipKeys    = []string{"zip", "postal_code", "postcode", "zip_code"}
)

func stringField(raw map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			// Numeric ids come back as JSON numbers on some endpoints.
			if t == math.Trunc(t) {
				return strconv.FormatInt(int64(t), 10)
			}
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

// normalizeRecord maps one raw CRM object to the typed profile handed
// to the rest of the system.
func normalizeRecord(raw map[string]any, kind string) ports.Profile {
	p := ports.Profile{
		ID:     stringField(raw, idKeys),
		Kind:   kind,
		Name:   stringField(raw, nameKeys),
		Email:  stringField(raw, emailKeys),
		Phone:  stringField(raw, phoneKeys),
		Street: stringField(raw, streetKeys),
		City:   stringField(raw, cityKeys),
		Zip:    stringField(raw, zipKeys),
	}
	if normalized, ok := domain.NormalizePhone(p.Phone); ok {
		p.Phone = normalized
	}
	return p
}

// phoneFromRecord scans the ordered phone candidates and, failing
// those, every remaining string field for anything that normalizes to
// a valid mobile number.
func phoneFromRecord(raw map[string]any) string {
	if v := stringField(raw, phoneKeys); v != "" {
		if normalized, ok := domain.NormalizePhone(v); ok {
			return normalized
		}
	}
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if normalized, valid := domain.NormalizePhone(s); valid {
			return normalized
		}
	}
	return ""
}
