package product

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/streetsupply/streetsupply/internal/dto"
	"github.com/streetsupply/streetsupply/internal/entity"
	"github.com/streetsupply/streetsupply/internal/identity"
	"github.com/streetsupply/streetsupply/internal/presentation/http/response"
	repo "github.com/streetsupply/streetsupply/internal/repository/product"
	service "github.com/streetsupply/streetsupply/internal/service/product"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/streetsupply/streetsupply/transport/http/product")

// Handler exposes catalog endpoints over HTTP. Browsing is public; listing
// management requires the owning supplier.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a product Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/products")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

type createPayload struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Unit             string  `json:"unit"`
	PricePerUnit     float64 `json:"price_per_unit"`
	MinOrderQuantity int     `json:"min_order_quantity"`
	StockAvailable   *bool   `json:"stock_available"`
	Description      string  `json:"description"`
	ImageURL         string  `json:"image_url"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.create")
	defer span.End()

	p, err := h.svc.Create(ctx, identity.FromContext(ctx), service.CreateInput{
		Name:             payload.Name,
		Category:         payload.Category,
		Unit:             payload.Unit,
		PricePerUnit:     payload.PricePerUnit,
		MinOrderQuantity: payload.MinOrderQuantity,
		StockAvailable:   payload.StockAvailable,
		Description:      payload.Description,
		ImageURL:         payload.ImageURL,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toDTO(p)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	f := repo.Filter{Category: c.QueryParam("category")}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	f.InStock = c.QueryParam("in_stock") == "true"
	if raw := c.QueryParam("supplier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid supplier_id", errorbank.WithCause(err))).Build()
		}
		f.SupplierID = &id
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.list")
	defer span.End()

	products, err := h.svc.List(ctx, identity.FromContext(ctx), f)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toDTO(p))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.getByID", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	p, err := h.svc.Get(ctx, identity.FromContext(ctx), id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(p)).Build()
}

type updatePayload struct {
	Name             *string  `json:"name"`
	Category         *string  `json:"category"`
	Unit             *string  `json:"unit"`
	PricePerUnit     *float64 `json:"price_per_unit"`
	MinOrderQuantity *int     `json:"min_order_quantity"`
	StockAvailable   *bool    `json:"stock_available"`
	Description      *string  `json:"description"`
	ImageURL         *string  `json:"image_url"`
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

	ctx, span := httpTracer.Start(c.Request().Context(), "products.update", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	p, err := h.svc.Update(ctx, identity.FromContext(ctx), id, service.UpdateInput{
		Name:             payload.Name,
		Category:         payload.Category,
		Unit:             payload.Unit,
		PricePerUnit:     payload.PricePerUnit,
		MinOrderQuantity: payload.MinOrderQuantity,
		StockAvailable:   payload.StockAvailable,
		Description:      payload.Description,
		ImageURL:         payload.ImageURL,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(p)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.delete", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	if err := h.svc.Delete(ctx, identity.FromContext(ctx), id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusNoContent).Build()
}

func toDTO(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:               p.ID,
		SupplierID:       p.SupplierID,
		Name:             p.Name,
		Category:         p.Category,
		Unit:             p.Unit,
		PricePerUnit:     p.PricePerUnit,
		MinOrderQuantity: p.MinOrderQuantity,
		StockAvailable:   p.StockAvailable,
		Description:      p.Description,
		ImageURL:         p.ImageURL,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
