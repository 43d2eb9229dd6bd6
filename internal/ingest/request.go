package ingest

import (
	"encoding/json"
	"io"

	"fjacquet/payrecon/internal/currencyutils"
	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/parsererror"

	"github.com/shopspring/decimal"
)

// PaymentRequest is a payment as submitted over the API or in a JSON
// payment list: the amount in major units and the value date as text.
type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	ValueDate   string          `json:"valueDate" yaml:"value_date"`
	Reference   *string         `json:"reference" yaml:"reference"`
	Description *string         `json:"description" yaml:"description"`
}

// Input converts the request. Amounts are rounded half away from zero to
// minor units.
func (r PaymentRequest) Input() (PaymentInput, error) {
	date, _, err := dateutils.ParseDate(r.ValueDate)
	if err != nil {
		return PaymentInput{}, &parsererror.ValidationError{Field: "valueDate", Reason: err.Error()}
	}
	amount, err := currencyutils.ToMinorUnits(r.Amount)
	if err != nil {
		return PaymentInput{}, &parsererror.ValidationError{Field: "amount", Reason: err.Error()}
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return PaymentInput{}, err
	}
	return PaymentInput{
		Amount:      amount,
		ValueDate:   date,
		Reference:   r.Reference,
		Description: r.Description,
		RawSource:   string(raw),
	}, nil
}

// DecodePaymentList reads a JSON array of payment requests.
func DecodePaymentList(r io.Reader) ([]PaymentRequest, error) {
	var requests []PaymentRequest
	if err := json.NewDecoder(r).Decode(&requests); err != nil {
		return nil, &parsererror.InvalidFormatError{
			Source:         "payment list",
			ExpectedFormat: "JSON array of payments",
			Msg:            err.Error(),
		}
	}
	return requests, nil
}
