package http

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/furniture-storefront/internal/cart"
	"github.com/tair/furniture-storefront/internal/route"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/internal/storefront/session"
	"github.com/tair/furniture-storefront/internal/storefront/usecase/command"
	qh "github.com/tair/furniture-storefront/internal/storefront/usecase/query"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// Handler serves the session API of one storefront session
type Handler struct {
	session *session.Session
}

// NewHandler creates a new session API handler
func NewHandler(s *session.Session) *Handler {
	return &Handler{session: s}
}

// RegisterRoutes registers the session API on app
func (h *Handler) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api")

	api.Get("/session", h.GetSession)
	api.Get("/route", h.GetRoute)
	api.Post("/route", h.Navigate)

	api.Get("/cart", h.GetCart)
	api.Post("/cart/items", h.AddCartItem)
	api.Patch("/cart/items/:productId", h.SetCartQuantity)
	api.Delete("/cart/items/:productId", h.RemoveCartItem)
	api.Delete("/cart", h.ClearCart)
	api.Post("/checkout", h.Checkout)

	api.Get("/products", h.ListProducts)
	api.Get("/products/featured", h.FeaturedProducts)
	api.Get("/products/:id", h.GetProduct)
	api.Get("/categories", h.ListCategories)
	api.Get("/store", h.StoreInfo)
	api.Get("/orders", h.MyOrders)

	api.Post("/auth/login", h.Login)
	api.Post("/auth/logout", h.Logout)
	api.Get("/profile", h.GetProfile)
	api.Put("/profile", h.SaveProfile)
	api.Get("/wishlist", h.GetWishlist)
	api.Post("/wishlist/:productId", h.AddToWishlist)
	api.Delete("/wishlist/:productId", h.RemoveFromWishlist)

	admin := api.Group("/admin", AdminMiddleware(h.session))
	admin.Get("/products", h.AdminListProducts)
	admin.Post("/products", h.AdminAddProduct)
	admin.Put("/products/:id", h.AdminUpdateProduct)
	admin.Put("/products/:id/media", h.AdminUploadMedia)
	admin.Put("/featured", h.AdminSetFeatured)
	admin.Post("/categories", h.AdminAddCategory)
	admin.Delete("/categories/:name", h.AdminDeleteCategory)
	admin.Get("/orders", h.AdminListOrders)
	admin.Patch("/orders/:id/status", h.AdminUpdateOrderStatus)
	admin.Get("/stats", h.AdminStats)
	admin.Post("/roles", h.AdminAssignRole)
}

func param(c *fiber.Ctx, key string) string {
	v := c.Params(key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func badRequest(c *fiber.Ctx, err error) error {
	return fail(c, fiber.StatusBadRequest, err)
}

// Session and route

// GetSession returns the current route, page and session flags
func (h *Handler) GetSession(c *fiber.Ctx) error {
	sum, err := h.session.Summarize(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, sum)
}

func (h *Handler) GetRoute(c *fiber.Ctx) error {
	r := h.session.Route()
	return ok(c, fiber.Map{"route": r, "fragment": route.Encode(r)})
}

type navigateRequest struct {
	Fragment string       `json:"fragment"`
	Route    *route.Route `json:"route"`
}

// Navigate moves to a fragment or a typed route
func (h *Handler) Navigate(c *fiber.Ctx) error {
	var req navigateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	fragment := req.Fragment
	if req.Route != nil {
		fragment = route.Encode(*req.Route)
	}
	r := h.session.Navigate(fragment)
	return ok(c, fiber.Map{"route": r, "fragment": route.Encode(r)})
}

// Cart

func (h *Handler) GetCart(c *fiber.Ctx) error {
	return ok(c, h.session.Cart())
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	Price     *int64 `json:"price"`
	ImageURL  string `json:"imageUrl"`
}

// AddCartItem adds a line to the cart. Without a name and price the product snapshot is
// taken from the catalog.
func (h *Handler) AddCartItem(c *fiber.Ctx) error {
	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if req.ProductID == "" {
		return badRequest(c, domain.NewValidationError("productId", "product id is required"))
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line := cart.Line{ProductID: req.ProductID, Quantity: req.Quantity, Name: req.Name, ImageURL: req.ImageURL}
	if req.Price != nil && req.Name != "" {
		line.UnitPrice = *req.Price
	} else {
		res := h.session.Queries.Catalog.Product(c.UserContext(), req.ProductID)
		if !res.Ready() {
			return respondResult(c, res)
		}
		if res.Data == nil {
			return fail(c, fiber.StatusNotFound, errors.New("product not found"))
		}
		line.Name = res.Data.Name
		line.UnitPrice = res.Data.Price
		line.ImageURL = res.Data.PrimaryImageURL()
	}

	return ok(c, h.session.CartStore().Add(line))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetCartQuantity sets a line quantity; zero or less removes the line
func (h *Handler) SetCartQuantity(c *fiber.Ctx) error {
	var req setQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	return ok(c, h.session.CartStore().SetQuantity(param(c, "productId"), req.Quantity))
}

func (h *Handler) RemoveCartItem(c *fiber.Ctx) error {
	return ok(c, h.session.CartStore().Remove(param(c, "productId")))
}

func (h *Handler) ClearCart(c *fiber.Ctx) error {
	return ok(c, h.session.CartStore().Clear())
}

// Checkout places the order for the cart
func (h *Handler) Checkout(c *fiber.Ctx) error {
	var req session.CheckoutDetails
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	orderID, err := h.session.Checkout(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"orderId": orderID},
	})
}

// Catalog

// ListProducts lists active products, optionally filtered by ?category=
func (h *Handler) ListProducts(c *fiber.Ctx) error {
	res := h.session.Queries.Catalog.Products(c.UserContext(), qh.ProductsQuery{Category: c.Query("category")})
	return respondResult(c, res)
}

func (h *Handler) FeaturedProducts(c *fiber.Ctx) error {
	return respondResult(c, h.session.Queries.Catalog.FeaturedProducts(c.UserContext()))
}

// GetProduct returns one product and records the view
func (h *Handler) GetProduct(c *fiber.Ctx) error {
	res := h.session.ViewProduct(c.UserContext(), param(c, "id"))
	if res.Ready() && res.Data == nil {
		return fail(c, fiber.StatusNotFound, errors.New("product not found"))
	}
	return respondResult(c, res)
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	return respondResult(c, h.session.Queries.Catalog.Categories(c.UserContext()))
}

func (h *Handler) StoreInfo(c *fiber.Ctx) error {
	return respondResult(c, h.session.Queries.Store.Info(c.UserContext()))
}

func (h *Handler) MyOrders(c *fiber.Ctx) error {
	if _, ok := h.session.Principal(); !ok {
		return respondError(c, domain.ErrNotAuthenticated)
	}
	return respondResult(c, h.session.Queries.Orders.MyOrders(c.UserContext()))
}

// Auth and profile

type loginRequest struct {
	Token string `json:"token"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if req.Token == "" {
		return badRequest(c, domain.NewValidationError("token", "token is required"))
	}

	id, err := h.session.Login(c.UserContext(), req.Token)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, err)
	}
	return ok(c, id)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.session.Logout(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	if _, ok := h.session.Principal(); !ok {
		return respondError(c, domain.ErrNotAuthenticated)
	}
	return respondResult(c, h.session.Queries.Account.Profile(c.UserContext()))
}

func (h *Handler) SaveProfile(c *fiber.Ctx) error {
	var req domain.UserProfile
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.session.Commands.Account.SaveProfile(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

func (h *Handler) GetWishlist(c *fiber.Ctx) error {
	if _, ok := h.session.Principal(); !ok {
		return respondError(c, domain.ErrNotAuthenticated)
	}
	return respondResult(c, h.session.Queries.Account.Wishlist(c.UserContext()))
}

func (h *Handler) AddToWishlist(c *fiber.Ctx) error {
	if err := h.session.Commands.Account.AddToWishlist(c.UserContext(), param(c, "productId")); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

func (h *Handler) RemoveFromWishlist(c *fiber.Ctx) error {
	if err := h.session.Commands.Account.RemoveFromWishlist(c.UserContext(), param(c, "productId")); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

// Admin

func (h *Handler) AdminListProducts(c *fiber.Ctx) error {
	res := h.session.Queries.Catalog.Products(c.UserContext(), qh.ProductsQuery{
		Category:        c.Query("category"),
		IncludeInactive: true,
	})
	return respondResult(c, res)
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Offer       string `json:"offer"`
	Category    string `json:"category"`
	IsActive    *bool  `json:"isActive"`
}

func (r productRequest) command(id string) command.SaveProductCommand {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return command.SaveProductCommand{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Offer:       r.Offer,
		Category:    r.Category,
		IsActive:    active,
	}
}

func (h *Handler) AdminAddProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	id, err := h.session.Commands.Products.Add(c.UserContext(), req.command(""))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"id": id},
	})
}

func (h *Handler) AdminUpdateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.session.Commands.Products.Update(c.UserContext(), req.command(param(c, "id"))); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

type mediaRequest struct {
	Images [][]byte `json:"images"`
	Videos [][]byte `json:"videos"`
}

// AdminUploadMedia appends base64 encoded images and videos to a product
func (h *Handler) AdminUploadMedia(c *fiber.Ctx) error {
	var req mediaRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	ctx := c.UserContext()
	id := param(c, "id")
	res := h.session.Queries.Catalog.Product(ctx, id)
	if !res.Ready() {
		return respondResult(c, res)
	}
	if res.Data == nil {
		return fail(c, fiber.StatusNotFound, errors.New("product not found"))
	}

	err := h.session.Commands.Products.AppendMedia(ctx, command.AppendMediaCommand{
		Product: *res.Data,
		Images:  req.Images,
		Videos:  req.Videos,
		OnProgress: func(p int) {
			logger.Debug(ctx).Str("product_id", id).Int("progress", p).Msg("Media upload progress")
		},
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

type featuredRequest struct {
	ProductIDs []string `json:"productIds"`
}

func (h *Handler) AdminSetFeatured(c *fiber.Ctx) error {
	var req featuredRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.session.Commands.Products.SetFeatured(c.UserContext(), req.ProductIDs); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) AdminAddCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.session.Commands.Categories.Add(c.UserContext(), req.Name); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

func (h *Handler) AdminDeleteCategory(c *fiber.Ctx) error {
	if err := h.session.Commands.Categories.Delete(c.UserContext(), param(c, "name")); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

// AdminListOrders lists every order; ?state=active or ?state=completed narrows the list
func (h *Handler) AdminListOrders(c *fiber.Ctx) error {
	ctx := c.UserContext()
	switch c.Query("state") {
	case "active":
		return respondResult(c, h.session.Queries.Orders.ActiveOrders(ctx))
	case "completed":
		return respondResult(c, h.session.Queries.Orders.CompletedOrders(ctx))
	case "":
		return respondResult(c, h.session.Queries.Orders.AllOrders(ctx))
	default:
		return badRequest(c, domain.NewValidationError("state", "must be active or completed"))
	}
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) AdminUpdateOrderStatus(c *fiber.Ctx) error {
	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	err := h.session.Commands.OrderStatus.Handle(c.UserContext(), command.UpdateOrderStatusCommand{
		OrderID: param(c, "id"),
		Status:  req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

// AdminStats returns system totals, or one product's counters with ?productId=
func (h *Handler) AdminStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if id := c.Query("productId"); id != "" {
		return respondResult(c, h.session.Queries.Catalog.ProductStats(ctx, id))
	}
	if all, _ := strconv.ParseBool(c.Query("products")); all {
		return respondResult(c, h.session.Queries.Catalog.AllProductStats(ctx))
	}
	return respondResult(c, h.session.Queries.Store.SystemStats(ctx))
}

type assignRoleRequest struct {
	Principal string          `json:"principal"`
	Role      domain.UserRole `json:"role"`
}

func (h *Handler) AdminAssignRole(c *fiber.Ctx) error {
	var req assignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.session.Commands.Account.AssignRole(c.UserContext(), req.Principal, req.Role); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}
