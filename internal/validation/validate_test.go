package validation

import (
	"errors"
	"testing"

	"table-order-kiosk/internal/model"
)

func TestStartSession(t *testing.T) {
	cases := []struct {
		name   string
		qr     string
		guests int
		field  string
	}{
		{name: "valid", qr: "QR-TABLE-4", guests: 2},
		{name: "zero guests", qr: "QR-TABLE-4", guests: 0, field: "NumberOfGuests"},
		{name: "negative guests", qr: "QR-TABLE-4", guests: -3, field: "NumberOfGuests"},
		{name: "too many guests", qr: "QR-TABLE-4", guests: 51, field: "NumberOfGuests"},
		{name: "empty code", qr: "  ", guests: 2, field: "QRCode"},
		{name: "path in code", qr: "table/4", guests: 2, field: "QRCode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := StartSession(tc.qr, tc.guests)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected valid input, got %v", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}
}

func TestCreateOrderRequest(t *testing.T) {
	valid := model.CreateOrderRequest{
		SessionID: 7,
		Items:     []model.OrderLine{{ItemID: 1, Quantity: 2}},
	}
	if err := Struct(valid); err != nil {
		t.Fatalf("expected valid order, got %v", err)
	}

	empty := model.CreateOrderRequest{SessionID: 7}
	if err := Struct(empty); err == nil {
		t.Fatalf("expected empty order to fail")
	}

	badQty := model.CreateOrderRequest{SessionID: 7, Items: []model.OrderLine{{ItemID: 1, Quantity: 0}}}
	if err := Struct(badQty); err == nil {
		t.Fatalf("expected zero quantity to fail")
	}
}

func TestBackendNote(t *testing.T) {
	note := model.BackendNote{Title: "Summary 500", Description: "summary endpoint fails", Endpoint: "/api/orders/session/1/summary", Type: "Outage"}
	var verr *Error
	if err := Struct(note); !errors.As(err, &verr) || verr.Field != "Type" {
		t.Fatalf("expected type error, got %v", err)
	}
	note.Type = model.NoteBug
	if err := Struct(note); err != nil {
		t.Fatalf("expected valid note, got %v", err)
	}
}
