package mapping

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sddportal/backend/internal/domain/account"
	"github.com/sddportal/backend/internal/domain/payment"
)

// ErrValidation is wrapped by every mapping failure
var ErrValidation = errors.New("validation failed")

// Config configures the default record mapper
type Config struct {
	// Profiles are optional named mappings; the "default" profile overrides the built-in mapping
	Profiles        *Profiles
	DefaultCurrency string
	Usage           string
	RemoteIP        string
}

// Mapper is the default account.RecordMapper
type Mapper struct {
	profiles        *Profiles
	defaultCurrency string
	usage           string
	remoteIP        string
	validate        *validator.Validate
}

// NewMapper creates a new Mapper
func NewMapper(cfg Config) *Mapper {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	currency := strings.ToUpper(strings.TrimSpace(cfg.DefaultCurrency))
	if currency == "" {
		currency = "EUR"
	}
	return &Mapper{
		profiles:        cfg.Profiles,
		defaultCurrency: currency,
		usage:           cfg.Usage,
		remoteIP:        cfg.RemoteIP,
		validate:        v,
	}
}

var _ account.RecordMapper = (*Mapper)(nil)

// ResolveMapping picks the account mapping, then the account's named profile,
// then the "default" profile, then the built-in default mapping.
func (m *Mapper) ResolveMapping(cfg *account.Config) account.FieldMapping {
	if cfg != nil {
		if !cfg.FieldMapping.IsEmpty() {
			return cfg.FieldMapping
		}
		if p, ok := m.profiles.Get(cfg.MappingProfile); ok {
			return p
		}
	}
	if p, ok := m.profiles.Get(DefaultProfile); ok {
		return p
	}
	return account.DefaultFieldMapping()
}

// Map implements account.RecordMapper
func (m *Mapper) Map(_ context.Context, record map[string]string, cfg *account.Config, ref account.RowRef) (*payment.SaleRequest, error) {
	fields := m.ResolveMapping(cfg)
	lookup := newLookup(record)
	get := func(field string) string {
		col, ok := fields.Column(field)
		if !ok {
			return ""
		}
		return lookup.get(col)
	}

	var problems []string

	amount, err := ParseAmountMinor(get(account.FieldAmount))
	if err != nil {
		problems = append(problems, "amount: "+err.Error())
	}

	iban := payment.NormalizeIBAN(get(account.FieldIBAN))
	if iban != "" && !payment.ValidIBAN(iban) {
		problems = append(problems, "iban: invalid checksum")
	}

	currency := strings.ToUpper(get(account.FieldCurrency))
	if currency == "" && cfg != nil {
		currency = cfg.DefaultCurrency
	}
	if currency == "" {
		currency = m.defaultCurrency
	}

	usage := get(account.FieldUsage)
	if usage == "" && cfg != nil {
		usage = cfg.Usage
	}
	if usage == "" {
		usage = m.usage
	}

	transactionID := get(account.FieldTransactionID)
	if transactionID == "" {
		transactionID = FallbackTransactionID(ref)
	}

	req := &payment.SaleRequest{
		TransactionID: transactionID,
		AmountMinor:   amount,
		Currency:      currency,
		IBAN:          iban,
		BIC:           strings.ToUpper(strings.ReplaceAll(get(account.FieldBIC), " ", "")),
		FirstName:     get(account.FieldFirstName),
		LastName:      get(account.FieldLastName),
		Email:         get(account.FieldEmail),
		Usage:         usage,
		RemoteIP:      m.remoteIP,
		Address1:      get(account.FieldAddress1),
		ZipCode:       get(account.FieldZipCode),
		City:          get(account.FieldCity),
		Country:       strings.ToUpper(get(account.FieldCountry)),
	}

	if err := m.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "amountMinor" && amount == 0 {
					continue
				}
				problems = append(problems, describe(fe))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return req, nil
}

// FallbackTransactionID derives a deterministic id for records without one.
// It is keyed by the row ordinal so deleting earlier records never hands a
// later row an id that was already sent to the gateway.
func FallbackTransactionID(ref account.RowRef) string {
	n := ref.Ordinal
	if n <= 0 {
		n = ref.RowIndex + 1
	}
	return fmt.Sprintf("sdd-%s-%d", strings.ReplaceAll(ref.UploadID.String(), "-", "")[:8], n)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + ": is required"
	case "email":
		return fe.Field() + ": invalid email format"
	case "ip":
		return fe.Field() + ": invalid IP address"
	case "len":
		return fe.Field() + ": must be exactly " + fe.Param() + " characters"
	case "min":
		return fe.Field() + ": must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + ": must be at most " + fe.Param() + " characters"
	case "alphanum":
		return fe.Field() + ": must contain only letters and digits"
	case "uppercase":
		return fe.Field() + ": must be upper case"
	}
	return fe.Field() + ": failed " + fe.Tag() + " check"
}

// lookup resolves columns case-insensitively after an exact match attempt
type lookup struct {
	exact map[string]string
	lower map[string]string
}

func newLookup(record map[string]string) lookup {
	l := lookup{exact: record, lower: make(map[string]string, len(record))}
	for k, v := range record {
		l.lower[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return l
}

func (l lookup) get(column string) string {
	if v, ok := l.exact[column]; ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(l.lower[strings.ToLower(column)])
}
