package doctype

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnknownType          = errors.New("unknown document type")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// Type is the declared kind of an uploaded document.
type Type string

const (
	RentReceipt     Type = "rent_receipt"
	ElectricityBill Type = "electricity_bill"
	WaterBill       Type = "water_bill"
	GasBill         Type = "gas_bill"
	MobileBill      Type = "mobile_bill"
	BankStatement   Type = "bank_statement"
	IncomeProof     Type = "income_proof"
	UPITransactions Type = "upi_transactions"
	MobileRecharge  Type = "mobile_recharge"
	InternetBill    Type = "internet_bill"
)

var all = []Type{
	RentReceipt,
	ElectricityBill,
	WaterBill,
	GasBill,
	MobileBill,
	BankStatement,
	IncomeProof,
	UPITransactions,
	MobileRecharge,
	InternetBill,
}

// All returns every known document type in a stable order.
func All() []Type {
	out := make([]Type, len(all))
	copy(out, all)
	return out
}

// Parse converts a label such as "bank_statement" into a Type.
func Parse(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
}

// Valid reports whether t is one of the known document types.
func (t Type) Valid() bool {
	for _, known := range all {
		if t == known {
			return true
		}
	}
	return false
}

func (t Type) String() string { return string(t) }

// FileKind selects the extraction path for stored content.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindPDF
	KindImage
)

func (k FileKind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

var allowedExtensions = map[string]FileKind{
	"pdf":  KindPDF,
	"jpg":  KindImage,
	"jpeg": KindImage,
	"png":  KindImage,
}

// KindFromFileName maps a file name's extension to its FileKind.
// Only pdf, jpg, jpeg and png are accepted.
func KindFromFileName(name string) (FileKind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
	if kind, ok := allowedExtensions[ext]; ok {
		return kind, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedExtension, name)
}
