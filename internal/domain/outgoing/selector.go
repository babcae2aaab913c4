// Package outgoing models the dispatch document configuration: document
// type, sub-type and destination, and the quantity rule attached to each
// combination.
package outgoing

import (
	"stockdesk/internal/core/apperror"
)

// DocumentType is the outgoing document kind.
type DocumentType string

const (
	DocSalesInvoice    DocumentType = "sales_invoice"
	DocDeliveryChallan DocumentType = "delivery_challan"
	DocTransferNote    DocumentType = "transfer_note"
)

// DocumentSubType refines the document kind.
type DocumentSubType string

const (
	SubTypeStandard    DocumentSubType = "standard"
	SubTypeJobWork     DocumentSubType = "job_work"
	SubTypeReplacement DocumentSubType = "replacement"
	SubTypeTransfer    DocumentSubType = "store_to_factory"
)

// ChallanSubType narrows a replacement delivery challan.
type ChallanSubType string

const (
	ChallanToCustomer ChallanSubType = "to_customer"
	ChallanToVendor   ChallanSubType = "to_vendor"
)

// DestinationType is where the dispatched goods go.
type DestinationType string

const (
	DestCustomer       DestinationType = "customer"
	DestVendor         DestinationType = "vendor"
	DestStoreToFactory DestinationType = "store_to_factory"
)

// Selection is one configured outgoing form state.
type Selection struct {
	DocumentType   DocumentType    `json:"documentType"`
	DocumentSubType DocumentSubType `json:"documentSubType"`
	ChallanSubType ChallanSubType  `json:"deliveryChallanSubType,omitempty"`
}

// SubTypesFor returns the legal sub-types for a document type.
// Nil means the document type itself is unknown.
func SubTypesFor(dt DocumentType) []DocumentSubType {
	switch dt {
	case DocSalesInvoice:
		return []DocumentSubType{SubTypeStandard}
	case DocDeliveryChallan:
		return []DocumentSubType{SubTypeJobWork, SubTypeReplacement}
	case DocTransferNote:
		return []DocumentSubType{SubTypeTransfer}
	default:
		return nil
	}
}

// ChallanSubTypesFor returns the legal challan sub-types, non-empty only
// for replacement delivery challans.
func ChallanSubTypesFor(dt DocumentType, st DocumentSubType) []ChallanSubType {
	if dt == DocDeliveryChallan && st == SubTypeReplacement {
		return []ChallanSubType{ChallanToCustomer, ChallanToVendor}
	}
	return nil
}

// Validate checks that the selection is one of the legal combinations.
func (s Selection) Validate() error {
	subTypes := SubTypesFor(s.DocumentType)
	if subTypes == nil {
		return apperror.NewValidation("unknown document type").
			WithDetail("documentType", string(s.DocumentType))
	}

	legal := false
	for _, st := range subTypes {
		if st == s.DocumentSubType {
			legal = true
			break
		}
	}
	if !legal {
		return apperror.NewValidation("document sub-type not allowed for document type").
			WithDetail("documentType", string(s.DocumentType)).
			WithDetail("documentSubType", string(s.DocumentSubType))
	}

	challanSubTypes := ChallanSubTypesFor(s.DocumentType, s.DocumentSubType)
	if len(challanSubTypes) == 0 {
		if s.ChallanSubType != "" {
			return apperror.NewValidation("delivery challan sub-type only applies to replacement challans")
		}
		return nil
	}
	for _, ct := range challanSubTypes {
		if ct == s.ChallanSubType {
			return nil
		}
	}
	return apperror.NewValidation("delivery challan sub-type is required for replacement challans").
		WithDetail("allowed", challanSubTypes)
}

// Destination resolves where the goods go for a valid selection.
func (s Selection) Destination() DestinationType {
	switch s.DocumentType {
	case DocSalesInvoice:
		return DestCustomer
	case DocTransferNote:
		return DestStoreToFactory
	case DocDeliveryChallan:
		if s.DocumentSubType == SubTypeReplacement && s.ChallanSubType == ChallanToVendor {
			return DestVendor
		}
		if s.DocumentSubType == SubTypeJobWork {
			return DestVendor
		}
		return DestCustomer
	default:
		return ""
	}
}

// RejectedQuantityMode reports whether the outgoing quantity records a
// defect count instead of a stock deduction. True only for replacement
// delivery challans sent back to the vendor: those record how many units
// were defective, not how many leave available stock.
func (s Selection) RejectedQuantityMode() bool {
	return s.DocumentType == DocDeliveryChallan &&
		s.DocumentSubType == SubTypeReplacement &&
		s.ChallanSubType == ChallanToVendor
}

// ValidateQuantity checks the outgoing quantity for the selection.
// Every combination except replacement-to-vendor is capped by available
// stock.
func (s Selection) ValidateQuantity(skuCode string, quantity, available int64) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if quantity <= 0 {
		return apperror.NewValidation("outgoing quantity must be positive")
	}
	if s.RejectedQuantityMode() {
		return nil
	}
	if quantity > available {
		return apperror.NewInsufficientStock(skuCode, quantity, available)
	}
	return nil
}
