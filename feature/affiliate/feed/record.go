package feed

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"affiliate-sync/core/reconcile"

	"github.com/go-playground/validator/v10"
)

// DefaultNetwork is used when neither the record nor the document names a network.
const DefaultNetwork = "custom"

// Well-known affiliate networks. Any other value is accepted as-is.
const (
	NetworkAmazon     = "amazon"
	NetworkShareASale = "shareasale"
	NetworkCustom     = DefaultNetwork
)

// Record is one affiliate product entry in the feed.
// It has no stable id; identity comes from its normalized name and brand.
type Record struct {
	ProductName      string `json:"product_name" yaml:"product_name" validate:"required,max=255"`
	Brand            string `json:"brand,omitempty" yaml:"brand,omitempty" validate:"max=255"`
	AffiliateLink    string `json:"affiliate_link" yaml:"affiliate_link" validate:"required,http_url,max=2048"`
	AffiliateNetwork string `json:"affiliate_network,omitempty" yaml:"affiliate_network,omitempty" validate:"max=64"`
	ExternalID       string `json:"external_id,omitempty" yaml:"external_id,omitempty" validate:"max=128"`
	Notes            string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Document is the on-disk feed format.
type Document struct {
	Products       []Record         `json:"products" yaml:"products"`
	MatchingRules  *reconcile.Rules `json:"matching_rules,omitempty" yaml:"matching_rules,omitempty"`
	DefaultNetwork string           `json:"default_affiliate_network,omitempty" yaml:"default_affiliate_network,omitempty"`
}

// NewDocument returns the document used when no feed exists yet.
func NewDocument() *Document {
	rules := reconcile.DefaultRules()
	return &Document{
		Products:       []Record{},
		MatchingRules:  &rules,
		DefaultNetwork: DefaultNetwork,
	}
}

// Rules returns the document rules, or none when the document carries none.
func (d *Document) Rules() reconcile.Rules {
	if d.MatchingRules == nil {
		return reconcile.Rules{}
	}
	return *d.MatchingRules
}

// ErrInvalidRecord wraps every record validation failure.
var ErrInvalidRecord = errors.New("invalid affiliate record")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the record fields.
func (r Record) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, fe.Field()+" failed "+fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(reasons, ", "))
}
