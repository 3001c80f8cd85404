package groupoffer

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
	repo "github.com/streetsupply/streetsupply/internal/repository/groupoffer"
	service "github.com/streetsupply/streetsupply/internal/service/groupoffer"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/streetsupply/streetsupply/transport/http/groupoffer")

// Handler exposes bulk-offer endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a group offer Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/group-offers")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

type createPayload struct {
	ProductDescription string    `json:"product_description"`
	Quantity           float64   `json:"quantity"`
	Unit               string    `json:"unit"`
	ActualRate         float64   `json:"actual_rate"`
	DiscountedRate     float64   `json:"discounted_rate"`
	Location           string    `json:"location"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
	Deadline           time.Time `json:"deadline"`
	EstimatedValue     float64   `json:"estimated_value"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "group_offers.create")
	defer span.End()

	g, err := h.svc.Create(ctx, identity.FromContext(ctx), service.CreateInput{
		ProductDescription: payload.ProductDescription,
		Quantity:           payload.Quantity,
		Unit:               payload.Unit,
		ActualRate:         payload.ActualRate,
		DiscountedRate:     payload.DiscountedRate,
		Location:           payload.Location,
		Latitude:           payload.Latitude,
		Longitude:          payload.Longitude,
		Deadline:           payload.Deadline,
		EstimatedValue:     payload.EstimatedValue,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toDTO(g)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	f := repo.Filter{Status: c.QueryParam("status")}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if raw := c.QueryParam("supplier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid supplier_id", errorbank.WithCause(err))).Build()
		}
		f.SupplierID = &id
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "group_offers.list")
	defer span.End()

	offers, err := h.svc.List(ctx, identity.FromContext(ctx), f)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.GroupOfferResponse, 0, len(offers))
	for _, g := range offers {
		out = append(out, toDTO(g))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "group_offers.getByID", trace.WithAttributes(attribute.String("offer.id", id.String())))
	defer span.End()

	g, err := h.svc.Get(ctx, identity.FromContext(ctx), id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(g)).Build()
}

type updatePayload struct {
	ProductDescription *string    `json:"product_description"`
	Quantity           *float64   `json:"quantity"`
	Unit               *string    `json:"unit"`
	ActualRate         *float64   `json:"actual_rate"`
	DiscountedRate     *float64   `json:"discounted_rate"`
	Location           *string    `json:"location"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	Deadline           *time.Time `json:"deadline"`
	Status             *string    `json:"status"`
	Participants       *int       `json:"participants"`
	EstimatedValue     *float64   `json:"estimated_value"`
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

	ctx, span := httpTracer.Start(c.Request().Context(), "group_offers.update", trace.WithAttributes(attribute.String("offer.id", id.String())))
	defer span.End()

	g, err := h.svc.Update(ctx, identity.FromContext(ctx), id, service.UpdateInput{
		ProductDescription: payload.ProductDescription,
		Quantity:           payload.Quantity,
		Unit:               payload.Unit,
		ActualRate:         payload.ActualRate,
		DiscountedRate:     payload.DiscountedRate,
		Location:           payload.Location,
		Latitude:           payload.Latitude,
		Longitude:          payload.Longitude,
		Deadline:           payload.Deadline,
		Status:             payload.Status,
		Participants:       payload.Participants,
		EstimatedValue:     payload.EstimatedValue,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(g)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "group_offers.delete", trace.WithAttributes(attribute.String("offer.id", id.String())))
	defer span.End()

	if err := h.svc.Delete(ctx, identity.FromContext(ctx), id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusNoContent).Build()
}

func toDTO(g *entity.GroupOffer) dto.GroupOfferResponse {
	return dto.GroupOfferResponse{
		ID:                 g.ID,
		SupplierID:         g.SupplierID,
		ProductDescription: g.ProductDescription,
		Quantity:           g.Quantity,
		Unit:               g.Unit,
		ActualRate:         g.ActualRate,
		DiscountedRate:     g.DiscountedRate,
		DiscountPercent:    g.DiscountPercent,
		Location:           g.Location,
		Latitude:           g.Latitude,
		Longitude:          g.Longitude,
		Deadline:           g.Deadline,
		Status:             g.Status,
		Participants:       g.Participants,
		EstimatedValue:     g.EstimatedValue,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}
