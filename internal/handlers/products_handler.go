package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harshitm/go-catalog-orders/internal/products"
	"github.com/harshitm/go-catalog-orders/internal/validation"
)

// RegisterProductRoutes registers routes for the product API.
func RegisterProductRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	store := products.NewStore(cfg.DynamoDBClient, cfg.ProductsTable, cfg.ProductNameIndex)

	r.POST("/products", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateProductRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		p, err := store.Create(ctx, req.Name, req.Price, *req.Quantity)
		if err != nil {
			if errors.Is(err, products.ErrDuplicateName) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slog.Error("create product failed", "name", req.Name, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.JSON(http.StatusCreated, toProductResponse(p))
	})

	r.GET("/products", func(c *gin.Context) {
		ctx := c.Request.Context()

		limit, offset, err := parsePagination(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := products.Filter{Name: c.Query("name")}
		if filter.MinPrice, err = parsePriceBound(c, "min_price"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if filter.MaxPrice, err = parsePriceBound(c, "max_price"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		list, err := store.List(ctx, filter, limit, offset)
		if err != nil {
			slog.Error("list products failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		resp := make([]productResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toProductResponse(&list[i]))
		}
		c.JSON(http.StatusOK, resp)
	})

	r.GET("/products/:id", func(c *gin.Context) {
		ctx := c.Request.Context()

		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id: " + id})
			return
		}

		p, err := store.Get(ctx, id)
		if err != nil {
			slog.Error("get product failed", "product_id", id, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found: " + id})
			return
		}

		c.JSON(http.StatusOK, toProductResponse(p))
	})
}

func parsePriceBound(c *gin.Context, param string) (*float64, error) {
	s := c.Query(param)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil, errors.New(param + " must be a non-negative number")
	}
	return &f, nil
}

func toProductResponse(p *products.Product) productResponse {
	return productResponse{
		ID:       p.ProductID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
	}
}
