package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	ordersapp "legacyorders/internal/orders/application"
	"legacyorders/internal/orders/domain"
	"legacyorders/internal/platform/apierr"
	"legacyorders/internal/platform/logger"
)

// multipartOverhead marge accordée au corps multipart au-delà de la taille du fichier
const multipartOverhead = 64 << 10

// FileImporter importe le contenu d'un fichier legacy
type FileImporter interface {
	ProcessFile(ctx context.Context, content []byte) (ordersapp.ImportReport, error)
}

// OrderFinder recherche des commandes
type OrderFinder interface {
	FindOrders(ctx context.Context, q ordersapp.OrderQuery) ([]ordersapp.UserOrderResponse, error)
}

// Handlers contient les handlers de l'API V1
type Handlers struct {
	imports        FileImporter
	orders         OrderFinder
	maxUploadBytes int64
	log            *logger.Logger
}

// NewHandlers crée une nouvelle instance des handlers V1
func NewHandlers(imports FileImporter, orders OrderFinder, maxUploadBytes int64, log *logger.Logger) *Handlers {
	return &Handlers{
		imports:        imports,
		orders:         orders,
		maxUploadBytes: maxUploadBytes,
		log:            log.With("component", "api_v1"),
	}
}

// RegisterRoutes monte les routes sous /api/v1
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	order := r.Group("/api/v1/order")
	order.POST("/upload", h.UploadOrders)
	order.GET("", h.ListOrders)
}

// UploadOrders handler pour POST /api/v1/order/upload (multipart/form-data, champ "file").
// 201 sans corps en cas de succès.
func (h *Handlers) UploadOrders(c *gin.Context) {
	limit := h.maxUploadBytes + multipartOverhead
	if c.Request.ContentLength > limit {
		RespondError(c, apierr.TooLarge("file_too_large", domain.ErrFileTooLarge))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(c, apierr.TooLarge("file_too_large", domain.ErrFileTooLarge))
			return
		}
		RespondError(c, apierr.BadRequest("file_missing", domain.ErrFileMissing))
		return
	}
	if fh.Size > h.maxUploadBytes {
		RespondError(c, apierr.TooLarge("file_too_large",
			fmt.Errorf("%w: %d bytes (max %d)", domain.ErrFileTooLarge, fh.Size, h.maxUploadBytes)))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open uploaded file: %w", err))
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		h.fail(c, fmt.Errorf("read uploaded file: %w", err))
		return
	}

	if _, err := h.imports.ProcessFile(c.Request.Context(), raw); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// listOrdersQuery paramètres de GET /api/v1/order
type listOrdersQuery struct {
	OrderID   *int64 `form:"orderId" binding:"omitempty,min=1"`
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

// ListOrders handler pour GET /api/v1/order?orderId=&startDate=&endDate=
func (h *Handlers) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondError(c, apierr.BadRequest("invalid_query", fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)))
		return
	}

	users, err := h.orders.FindOrders(c.Request.Context(), ordersapp.OrderQuery{
		OrderID:   q.OrderID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Health handler pour GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail traduit une erreur applicative en réponse HTTP
func (h *Handlers) fail(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	_ = c.Error(err)
	RespondError(c, apiErr)
}

func toAPIError(err error) *apierr.Error {
	switch {
	case errors.Is(err, domain.ErrFileMissing):
		return apierr.BadRequest("file_missing", err)
	case errors.Is(err, domain.ErrFileTooLarge):
		return apierr.TooLarge("file_too_large", err)
	case errors.Is(err, domain.ErrMalformedLine):
		return apierr.BadRequest("malformed_line", err)
	case errors.Is(err, domain.ErrInvalidFilter):
		return apierr.BadRequest("invalid_query", err)
	default:
		return apierr.As(err)
	}
}
