package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	ordersvc "github.com/gildedlane/storefront-backend/internal/orders"
	"github.com/gildedlane/storefront-backend/pkg/enums"
	pkgerrors "github.com/gildedlane/storefront-backend/pkg/errors"
)

type stubOrderService struct {
	order     ordersvc.OrderDTO
	summaries []ordersvc.SummaryDTO
	err       error

	lastRole  enums.Role
	lastInput ordersvc.PlaceOrderInput
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, role enums.Role, input ordersvc.PlaceOrderInput) (ordersvc.OrderDTO, error) {
	s.lastRole = role
	s.lastInput = input
	return s.order, s.err
}

func (s *stubOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]ordersvc.SummaryDTO, error) {
	return s.summaries, s.err
}

func placeOrderFields(productID uuid.UUID) map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"product_id": productID, "quantity": 3},
		},
		"payment_method": "upi",
		"shipping_address": map[string]any{
			"full_name": "Asha Nair",
			"email":     "asha@example.com",
			"phone":     "9876543210",
			"address":   "14 Marine Drive",
			"city":      "Mumbai",
			"state":     "Maharashtra",
			"pincode":   "400001",
			"country":   "India",
		},
		"billing_address": map[string]any{
			"full_name": "Asha Nair",
			"address":   "14 Marine Drive",
			"city":      "Mumbai",
			"state":     "Maharashtra",
			"pincode":   "400001",
			"country":   "India",
		},
	}
}

func placeOrderBody(t *testing.T, productID uuid.UUID) []byte {
	t.Helper()
	body, err := json.Marshal(placeOrderFields(productID))
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func TestOrderPlaceCreated(t *testing.T) {
	svc := &stubOrderService{order: ordersvc.OrderDTO{OrderNumber: "GL-20250830-000042", Total: 2097}}
	handler := OrderPlace(svc, nil)

	productID := uuid.New()
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", placeOrderBody(t, productID), "reseller"))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data ordersvc.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "GL-20250830-000042" {
		t.Fatalf("unexpected order number: %s", envelope.Data.OrderNumber)
	}
	if svc.lastRole != enums.RoleReseller {
		t.Fatalf("role not forwarded, got %s", svc.lastRole)
	}
	if svc.lastInput.PaymentMethod != enums.PaymentMethodUPI {
		t.Fatalf("payment method not forwarded, got %s", svc.lastInput.PaymentMethod)
	}
	if len(svc.lastInput.Items) != 1 || svc.lastInput.Items[0].ProductID != productID || svc.lastInput.Items[0].Quantity != 3 {
		t.Fatalf("submitted items not forwarded, got %+v", svc.lastInput.Items)
	}
	if svc.lastInput.Billing.City != "Mumbai" {
		t.Fatalf("billing address not forwarded, got %+v", svc.lastInput.Billing)
	}
}

func TestOrderPlaceRejectsUnknownPaymentMethod(t *testing.T) {
	handler := OrderPlace(&stubOrderService{}, nil)

	fields := placeOrderFields(uuid.New())
	fields["payment_method"] = "barter"
	body, _ := json.Marshal(fields)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", body, "customer"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderPlaceRejectsMissingItems(t *testing.T) {
	handler := OrderPlace(&stubOrderService{}, nil)

	fields := placeOrderFields(uuid.New())
	fields["items"] = []map[string]any{}
	body, _ := json.Marshal(fields)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", body, "customer"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderPlaceRejectsMissingBillingAddress(t *testing.T) {
	handler := OrderPlace(&stubOrderService{}, nil)

	fields := placeOrderFields(uuid.New())
	delete(fields, "billing_address")
	body, _ := json.Marshal(fields)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", body, "customer"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderPlaceBlockedByUnverifiedContact(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "email must be verified before placing an order")}
	handler := OrderPlace(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", placeOrderBody(t, uuid.New()), "customer"))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestOrderListSuccess(t *testing.T) {
	svc := &stubOrderService{summaries: []ordersvc.SummaryDTO{{OrderNumber: "GL-20250830-000001", Total: 699}}}
	handler := OrderList(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders", nil, "customer"))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []ordersvc.SummaryDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Total != 699 {
		t.Fatalf("unexpected summaries: %+v", envelope.Data)
	}
}

func TestOrderDetailInvalidID(t *testing.T) {
	handler := OrderDetail(&stubOrderService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil, "customer")
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderDetailNotFound(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	handler := OrderDetail(svc, nil)

	orderID := uuid.NewString()
	req := authedRequest(http.MethodGet, "/api/v1/orders/"+orderID, nil, "customer")
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
