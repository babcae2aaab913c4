package dto

import (
	"stockdesk/internal/domain/outgoing"
)

// ValidateOutgoingRequest checks an outgoing form state and quantity.
type ValidateOutgoingRequest struct {
	DocumentType           string `json:"documentType" binding:"required"`
	DocumentSubType        string `json:"documentSubType" binding:"required"`
	DeliveryChallanSubType string `json:"deliveryChallanSubType,omitempty"`

	SKUCode   string `json:"skuCode,omitempty"`
	Quantity  int64  `json:"quantity" binding:"required"`
	Available int64  `json:"available"`
}

// Selection converts the request to a domain selection.
func (r ValidateOutgoingRequest) Selection() outgoing.Selection {
	return outgoing.Selection{
		DocumentType:    outgoing.DocumentType(r.DocumentType),
		DocumentSubType: outgoing.DocumentSubType(r.DocumentSubType),
		ChallanSubType:  outgoing.ChallanSubType(r.DeliveryChallanSubType),
	}
}

// ValidateOutgoingResponse reports the resolved destination and quantity
// semantics of a valid selection.
type ValidateOutgoingResponse struct {
	OK                   bool   `json:"ok"`
	Destination          string `json:"destination"`
	RejectedQuantityMode bool   `json:"rejectedQuantityMode"`
}

// DocumentTypeResponse is one node of the document-type tree served to
// the form.
type DocumentTypeResponse struct {
	DocumentType string                    `json:"documentType"`
	SubTypes     []DocumentSubTypeResponse `json:"subTypes"`
}

// DocumentSubTypeResponse is one sub-type with its destination and, for
// replacement challans, the challan sub-type fan-out.
type DocumentSubTypeResponse struct {
	DocumentSubType string   `json:"documentSubType"`
	ChallanSubTypes []string `json:"deliveryChallanSubTypes,omitempty"`
}

// DocumentTypeTree renders the full selector configuration.
func DocumentTypeTree() []DocumentTypeResponse {
	types := []outgoing.DocumentType{
		outgoing.DocSalesInvoice,
		outgoing.DocDeliveryChallan,
		outgoing.DocTransferNote,
	}

	out := make([]DocumentTypeResponse, 0, len(types))
	for _, dt := range types {
		node := DocumentTypeResponse{DocumentType: string(dt)}
		for _, st := range outgoing.SubTypesFor(dt) {
			sub := DocumentSubTypeResponse{DocumentSubType: string(st)}
			for _, ct := range outgoing.ChallanSubTypesFor(dt, st) {
				sub.ChallanSubTypes = append(sub.ChallanSubTypes, string(ct))
			}
			node.SubTypes = append(node.SubTypes, sub)
		}
		out = append(out, node)
	}
	return out
}
