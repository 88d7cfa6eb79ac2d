package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"queued-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var accountNameRe = regexp.MustCompile(`^[\p{L}\p{N} ._\-]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_name", validateAccountName)
		_ = v.RegisterValidation("txn_kind", validateTxnKind)
		v.RegisterStructValidation(validateMoneyFields,
			CreateAccountRequest{}, AmountRequest{}, TransferRequest{}, EnqueueRequest{})
	}
}

// validateMoneyFields rejects decimals the store cannot hold exactly, such as
// "100.00005" or "1e-5000000". Sign rules stay with the engine.
func validateMoneyFields(sl validator.StructLevel) {
	var (
		amount          decimal.Decimal
		jsonName, field = "amount", "Amount"
	)
	switch req := sl.Current().Interface().(type) {
	case CreateAccountRequest:
		amount, jsonName, field = req.InitialBalance, "initial_balance", "InitialBalance"
	case AmountRequest:
		amount = req.Amount
	case TransferRequest:
		amount = req.Amount
	case EnqueueRequest:
		amount = req.Amount
	default:
		return
	}
	if !domain.ValidMoney(amount) {
		sl.ReportError(amount, jsonName, field, "money", "")
	}
}

// validateAccountName allows letters, digits, space, dot, underscore and dash.
func validateAccountName(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "" && accountNameRe.MatchString(s)
}

// validateTxnKind accepts DEPOSIT, WITHDRAW and TRANSFER in any case.
func validateTxnKind(fl validator.FieldLevel) bool {
	_, ok := domain.ParseTransactionKind(fl.Field().String())
	return ok
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
