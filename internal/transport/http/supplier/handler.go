package supplier

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
	service "github.com/streetsupply/streetsupply/internal/service/supplier"
	"github.com/streetsupply/streetsupply/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/streetsupply/streetsupply/transport/http/supplier")

// Handler exposes supplier profile endpoints over HTTP. Reads are public,
// writes require the owning account.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a supplier Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/suppliers")
	g.POST("", h.register)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
}

type registerPayload struct {
	BusinessName        string `json:"business_name"`
	OwnerName           string `json:"owner_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Street              string `json:"street"`
	City                string `json:"city"`
	State               string `json:"state"`
	PostalCode          string `json:"postal_code"`
	BusinessType        string `json:"business_type"`
	TaxRegistrationNo   string `json:"tax_registration_no"`
	FoodSafetyLicenseNo string `json:"food_safety_license_no"`
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.register")
	defer span.End()

	sup, err := h.svc.Register(ctx, identity.FromContext(ctx), service.RegisterInput{
		BusinessName:        payload.BusinessName,
		OwnerName:           payload.OwnerName,
		Email:               payload.Email,
		Phone:               payload.Phone,
		Street:              payload.Street,
		City:                payload.City,
		State:               payload.State,
		PostalCode:          payload.PostalCode,
		BusinessType:        payload.BusinessType,
		TaxRegistrationNo:   payload.TaxRegistrationNo,
		FoodSafetyLicenseNo: payload.FoodSafetyLicenseNo,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toDTO(sup)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.list")
	defer span.End()

	suppliers, err := h.svc.List(ctx, identity.FromContext(ctx), limit, offset)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for _, sup := range suppliers {
		out = append(out, toDTO(sup))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.getByID", trace.WithAttributes(attribute.String("supplier.id", id.String())))
	defer span.End()

	sup, err := h.svc.Get(ctx, identity.FromContext(ctx), id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(sup)).Build()
}

type updatePayload struct {
	BusinessName        *string  `json:"business_name"`
	OwnerName           *string  `json:"owner_name"`
	Email               *string  `json:"email"`
	Phone               *string  `json:"phone"`
	Street              *string  `json:"street"`
	City                *string  `json:"city"`
	State               *string  `json:"state"`
	PostalCode          *string  `json:"postal_code"`
	BusinessType        *string  `json:"business_type"`
	TaxRegistrationNo   *string  `json:"tax_registration_no"`
	FoodSafetyLicenseNo *string  `json:"food_safety_license_no"`
	Rating              *float64 `json:"rating"`
	TotalReviews        *int     `json:"total_reviews"`
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

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.update", trace.WithAttributes(attribute.String("supplier.id", id.String())))
	defer span.End()

	sup, err := h.svc.Update(ctx, identity.FromContext(ctx), id, service.UpdateInput{
		BusinessName:        payload.BusinessName,
		OwnerName:           payload.OwnerName,
		Email:               payload.Email,
		Phone:               payload.Phone,
		Street:              payload.Street,
		City:                payload.City,
		State:               payload.State,
		PostalCode:          payload.PostalCode,
		BusinessType:        payload.BusinessType,
		TaxRegistrationNo:   payload.TaxRegistrationNo,
		FoodSafetyLicenseNo: payload.FoodSafetyLicenseNo,
		Rating:              payload.Rating,
		TotalReviews:        payload.TotalReviews,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(toDTO(sup)).Build()
}

func toDTO(s *entity.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:                  s.ID,
		BusinessName:        s.BusinessName,
		OwnerName:           s.OwnerName,
		Email:               s.Email,
		Phone:               s.Phone,
		Street:              s.Street,
		City:                s.City,
		State:               s.State,
		PostalCode:          s.PostalCode,
		BusinessType:        s.BusinessType,
		TaxRegistrationNo:   s.TaxRegistrationNo,
		FoodSafetyLicenseNo: s.FoodSafetyLicenseNo,
		Rating:              s.Rating,
		TotalReviews:        s.TotalReviews,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}
