package order

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/streetsupply/streetsupply/internal/dto"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
	"github.com/streetsupply/streetsupply/internal/presentation/http/response"
	repo "github.com/streetsupply/streetsupply/internal/repository/order"
	service "github.com/streetsupply/streetsupply/internal/service/order"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/streetsupply/streetsupply/transport/http/order")

// Handler exposes order endpoints over HTTP. Every route passes the caller
// down; the row policy in the service decides what each caller can see.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.GET("/:id/items", h.items)
	g.PATCH("/:id", h.update)
	g.POST("/:id/accept", h.accept)
}

type itemPayload struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type createPayload struct {
	OrderType       string        `json:"order_type"`
	SupplierID      *uuid.UUID    `json:"supplier_id"`
	Items           []itemPayload `json:"items"`
	Tax             float64       `json:"tax"`
	DeliveryCharge  float64       `json:"delivery_charge"`
	GroupDiscount   float64       `json:"group_discount"`
	PaymentMethod   string        `json:"payment_method"`
	DeliveryAddress string        `json:"delivery_address"`
	DeliveryDate    *time.Time    `json:"delivery_date"`
	Notes           string        `json:"notes"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if len(payload.Items) == 0 {
		return b.WithError(errorbank.BadRequest("at least one item is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	defer span.End()

	items := make([]service.ItemInput, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, service.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.svc.Create(ctx, identity.FromContext(ctx), service.CreateInput{
		OrderType:       payload.OrderType,
		SupplierID:      payload.SupplierID,
		Items:           items,
		Tax:             payload.Tax,
		DeliveryCharge:  payload.DeliveryCharge,
		GroupDiscount:   payload.GroupDiscount,
		PaymentMethod:   payload.PaymentMethod,
		DeliveryAddress: payload.DeliveryAddress,
		DeliveryDate:    payload.DeliveryDate,
		Notes:           payload.Notes,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toDTO(o)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	f := repo.Filter{
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("payment_status"),
	}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, identity.FromContext(ctx), f)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toDTO(o))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	o, err := h.svc.Get(ctx, identity.FromContext(ctx), id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(o)).Build()
}

func (h *Handler) items(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.items", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	items, err := h.svc.Items(ctx, identity.FromContext(ctx), id)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.OrderItemResponse{
			ID:         it.ID,
			OrderID:    it.OrderID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
			CreatedAt:  it.CreatedAt,
		})
	}
	return b.WithData(out).Build()
}

type updatePayload struct {
	Status           *string    `json:"status"`
	PaymentStatus    *string    `json:"payment_status"`
	PaymentMethod    *string    `json:"payment_method"`
	PaymentReference *string    `json:"payment_reference"`
	DeliveryAddress  *string    `json:"delivery_address"`
	DeliveryDate     *time.Time `json:"delivery_date"`
	Notes            *string    `json:"notes"`
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload updatePayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	o, err := h.svc.Update(ctx, identity.FromContext(ctx), id, service.UpdateInput{
		Status:           payload.Status,
		PaymentStatus:    payload.PaymentStatus,
		PaymentMethod:    payload.PaymentMethod,
		PaymentReference: payload.PaymentReference,
		DeliveryAddress:  payload.DeliveryAddress,
		DeliveryDate:     payload.DeliveryDate,
		Notes:            payload.Notes,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(o)).Build()
}

func (h *Handler) accept(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.accept", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	o, err := h.svc.Accept(ctx, identity.FromContext(ctx), id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(o)).Build()
}

func toDTO(o *entity.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		VendorID:         o.VendorID,
		SupplierID:       o.SupplierID,
		OrderType:        o.OrderType,
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		PaymentMethod:    o.PaymentMethod,
		PaymentReference: o.PaymentReference,
		Subtotal:         o.Subtotal,
		Tax:              o.Tax,
		DeliveryCharge:   o.DeliveryCharge,
		GroupDiscount:    o.GroupDiscount,
		TotalAmount:      o.TotalAmount,
		DeliveryAddress:  o.DeliveryAddress,
		DeliveryDate:     o.DeliveryDate,
		Notes:            o.Notes,
		Items:            o.ItemsSnapshot,
		Customer:         o.Customer,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
