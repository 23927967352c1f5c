package api

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
)

// PricelistOptions configures a Pricelist request.
type PricelistOptions struct {
	// Currency defaults to the server's default (USD).
	Currency optional.Option[CurrencyID]
}

// PriceOptions configures a Prices request. On is mutually exclusive with
// From and To.
type PriceOptions struct {
	From optional.Option[time.Time]
	To   optional.Option[time.Time]
	On   optional.Option[time.Time]

	// Currency requires the pro plan.
	Currency optional.Option[CurrencyID]
}

// PopularOptions configures a Popular request.
type PopularOptions struct {
	// Limit caps the number of results; zero means the server default.
	Limit int `validate:"gte=0"`
}

// RatesOptions configures a LatestRates or HistoricalRates request.
type RatesOptions struct {
	// Base defaults to the server's base currency.
	Base optional.Option[CurrencyID]

	// Currencies restricts the result to these ids; empty means all.
	Currencies []CurrencyID `validate:"dive,required,excludes=0x2C"`
}

// historicalDateLayout is the only date format HistoricalRates accepts.
const historicalDateLayout = "2006-01-02"

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// checkStruct validates s against its tags and turns the first failure
// into an InvalidArgumentError.
func (c *Client) checkStruct(op string, s any) error {
	if err := c.validate.Struct(s); err != nil {
		return invalidArgument(op, err)
	}
	return nil
}

// checkVar validates a single value against tag.
func (c *Client) checkVar(op, field string, v any, tag string) error {
	if err := c.validate.Var(v, tag); err != nil {
		ia := invalidArgument(op, err)
		ia.Field = field
		return ia
	}
	return nil
}

func invalidArgument(op string, err error) *InvalidArgumentError {
	ia := &InvalidArgumentError{Operation: op, Field: "arguments", Reason: err.Error(), Cause: err}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		ia.Field = strings.ToLower(fe.Field())
		ia.Reason = describeFailure(fe)
	}
	return ia
}

func describeFailure(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "excludes":
		return "must not contain a comma"
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
