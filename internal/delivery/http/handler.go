// Package http exposes the storefront's REST API. Validation lives at
// this boundary: the stores and services underneath are permissive by
// contract, so anything user-shaped gets checked here first.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/artisans-corner/storefront/internal/catalog"
	"github.com/artisans-corner/storefront/internal/checkout"
	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/money"
	"github.com/artisans-corner/storefront/internal/repository"
	"github.com/artisans-corner/storefront/internal/service"
	"github.com/artisans-corner/storefront/internal/session"
)

const sessionCookie = "storefront_session"

// Handler handles HTTP requests for the application.
type Handler struct {
	sessions *session.Manager
	catalog  *service.CatalogService
	orders   *service.OrderService
	taxRate  decimal.Decimal
}

func NewHandler(sessions *session.Manager, catalogSvc *service.CatalogService, orderSvc *service.OrderService, taxRate decimal.Decimal) *Handler {
	return &Handler{
		sessions: sessions,
		catalog:  catalogSvc,
		orders:   orderSvc,
		taxRate:  taxRate,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("POST /api/products", h.handleCreateProduct)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.handleGetReviews)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.handleCreateReview)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.handleUpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.handleRemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", h.handleClearCart)

	mux.HandleFunc("POST /api/checkout", h.handleBeginCheckout)
	mux.HandleFunc("POST /api/checkout/confirm", h.handleConfirmCheckout)
	mux.HandleFunc("POST /api/checkout/cancel", h.handleCancelCheckout)

	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)

	mux.HandleFunc("GET /api/orders", h.handleGetOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.handleGetOrder)
}

// session resolves the caller's session from the cookie (or X-Session-Id
// header), minting a fresh one when absent.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	if id == "" {
		id = r.Header.Get("X-Session-Id")
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return h.sessions.Get(r.Context(), id)
}

// --- products ---

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		slog.Error("Failed to get products", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.Context(), r.PathValue("id"))
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to get product", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	identity := sess.Auth.Current()
	if identity.IsGuest() {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), entity.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Stock:       req.Stock,
		VendorID:    identity.UserID,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// --- reviews ---

func (h *Handler) handleGetReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.catalog.Reviews(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("Failed to get reviews", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []entity.Review{}
	}
	respondJSON(w, http.StatusOK, reviews)
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	identity := sess.Auth.Current()
	if identity.IsGuest() {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rev, err := h.catalog.AddReview(r.Context(), r.PathValue("id"), identity.UserID, req.Rating, req.Comment)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, rev)
}

// --- cart ---

type cartResponse struct {
	Identity string                `json:"identity"`
	Items    []entity.CartLineItem `json:"items"`
	Totals   checkout.Totals       `json:"totals"`
	Display  string                `json:"display_total"`
}

func (h *Handler) writeCart(w http.ResponseWriter, sess *session.Session, status int) {
	items := sess.Cart.Items()
	totals := checkout.ComputeTotals(items, h.taxRate)
	respondJSON(w, status, cartResponse{
		Identity: sess.Auth.Current().String(),
		Items:    items,
		Totals:   totals,
		Display:  money.FormatINR(totals.Total),
	})
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, h.session(w, r), http.StatusOK)
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// A bare product_id is looked up in the catalog; a full product
	// document is normalized as-is.
	var item entity.CartLineItem
	if id, ok := raw["product_id"].(string); ok && len(raw) == 1 {
		var err error
		item, err = h.catalog.LineItemFor(r.Context(), id)
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Failed to resolve product", "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	} else {
		var err error
		item, err = catalog.NormalizeLineItem(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := sess.Cart.Add(r.Context(), item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeCart(w, sess, http.StatusOK)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// The store accepts any integer; the floor is enforced here.
	if req.Quantity < 1 {
		http.Error(w, "quantity must be at least 1", http.StatusBadRequest)
		return
	}

	sess.Cart.SetQuantity(r.Context(), r.PathValue("id"), req.Quantity)
	h.writeCart(w, sess, http.StatusOK)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	sess.Cart.Remove(r.Context(), r.PathValue("id"))
	h.writeCart(w, sess, http.StatusOK)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	sess.Cart.Clear(r.Context())
	h.writeCart(w, sess, http.StatusOK)
}

// --- checkout ---

type draftResponse struct {
	*checkout.Draft
	DisplaySubtotal string `json:"display_subtotal"`
	DisplayTax      string `json:"display_tax"`
	DisplayTotal    string `json:"display_total"`
}

func (h *Handler) handleBeginCheckout(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)

	draft, err := sess.Checkout.Begin()
	if errors.Is(err, checkout.ErrEmptyCart) {
		http.Error(w, "cart is empty", http.StatusBadRequest)
		return
	}
	if errors.Is(err, checkout.ErrInvalidState) {
		http.Error(w, "a checkout is already in progress", http.StatusConflict)
		return
	}
	if err != nil {
		slog.Error("Failed to begin checkout", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, draftResponse{
		Draft:           draft,
		DisplaySubtotal: money.FormatINR(draft.Totals.Subtotal),
		DisplayTax:      money.FormatINR(draft.Totals.Tax),
		DisplayTotal:    money.FormatINR(draft.Totals.Total),
	})
}

func (h *Handler) handleConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	identity := sess.Auth.Current()
	if identity.IsGuest() {
		http.Error(w, "please log in to complete your purchase", http.StatusUnauthorized)
		return
	}

	orderID, err := sess.Checkout.Confirm(r.Context(), identity.UserID)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"order_id": orderID,
		"status":   "placed",
	})
}

// writeCheckoutError maps the checkout failure taxonomy onto responses.
// An unrecorded order after a captured payment is the one case that must
// never look like an ordinary retryable failure.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	var subErr *checkout.OrderSubmissionError
	if errors.As(err, &subErr) {
		respondJSON(w, http.StatusBadGateway, map[string]string{
			"error":       "payment captured but order not recorded; please contact support",
			"payment_ref": subErr.PaymentRef,
		})
		return
	}

	var payErr *checkout.PaymentError
	if errors.As(err, &payErr) {
		respondJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": "payment failed, please try again",
		})
		return
	}

	if errors.Is(err, checkout.ErrInvalidState) {
		http.Error(w, "no checkout awaiting payment", http.StatusConflict)
		return
	}

	slog.Error("Checkout confirmation failed", "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *Handler) handleCancelCheckout(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := sess.Checkout.Cancel(); err != nil {
		http.Error(w, "no checkout to cancel", http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// --- auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := sess.Auth.Login(req.UserID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeCart(w, sess, http.StatusOK)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	sess.Auth.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// --- orders ---

func (h *Handler) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	identity := sess.Auth.Current()
	if identity.IsGuest() {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := h.orders.OrdersForUser(r.Context(), identity.UserID, limit)
	if err != nil {
		slog.Error("Failed to get orders", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	identity := sess.Auth.Current()
	if identity.IsGuest() {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}

	o, err := h.orders.Order(r.Context(), r.PathValue("id"))
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to get order", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	// Another user's order id reads as absent, so ids cannot be probed
	// for payment references.
	if o.UserID != identity.UserID {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// --- helpers ---

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// EnableCORS is a middleware to allow the browser frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Session-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
