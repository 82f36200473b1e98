package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/access"
	"github.com/kirinyoku/eventease/internal/domain"
	"github.com/kirinyoku/eventease/internal/service"
	"github.com/kirinyoku/eventease/internal/service/admin"
	"github.com/kirinyoku/eventease/internal/service/auth"
	"github.com/kirinyoku/eventease/internal/service/catalog"
	"github.com/kirinyoku/eventease/internal/service/payment"
	"github.com/kirinyoku/eventease/internal/service/reconcile"
	"github.com/kirinyoku/eventease/internal/service/registration"
	"github.com/kirinyoku/eventease/internal/session"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	tzParam  = "tz"
	tzHeader = "X-Timezone"

	actionRegister   = "Register for Event"
	actionRegistered = "Already Registered"

	msgInvalidCredentials = "Invalid Email or Password"
	msgPaymentFailed      = "Payment failed to initialize"
)

type Options struct {
	// CookieSecure marks the session and flash cookies Secure.
	CookieSecure bool
	// Table overrides the default route table.
	Table *access.Table
	// Now is the clock of the home view.
	Now func() time.Time
}

type handlers struct {
	svcs   *service.Services
	opts   Options
	logger *slog.Logger
}

func NewRouter(
	svcs *service.Services,
	opts Options,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	if opts.Table == nil {
		opts.Table = access.DefaultTable()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &handlers{svcs: svcs, opts: opts, logger: logger}

	r := gin.New()

	r.Use(
		gin.Recovery(),
		LoggingMiddleware(logger),
		RequestIDMiddleware(),
		CORS(),
		SessionMiddleware(svcs.Sessions),
		Guard(opts.Table),
	)
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// public
	r.GET("/about", h.about)
	r.GET("/login", h.page("login"))
	r.POST("/login", h.login)
	r.GET("/register", h.page("register"))
	r.POST("/register", h.register)

	// signed in
	r.GET("/", h.home)
	r.GET("/events", h.listEvents)
	r.GET("/events/:id", h.getEvent)
	r.GET("/payment/:id", h.paymentSummary)
	r.POST("/payment/:id", h.startCheckout)
	r.GET("/dashboard", h.dashboard)
	r.GET("/profile", h.getProfile)
	r.PUT("/profile", h.updateProfile)
	r.POST("/profile/logout", h.logout)

	adminGroup := r.Group("/admin")
	{
		adminGroup.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusSeeOther, "/admin/dashboard")
		})
		adminGroup.GET("/dashboard", h.adminDashboard)
		adminGroup.GET("/registrations/:id", h.eventRegistrations)
		adminGroup.DELETE("/events/:id", h.deleteEvent)
	}

	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, access.PathHome)
	})

	return r
}

// --- Public ---

// @Summary  About page
// @Success  200 {object} AboutView
// @Router   /about [get]
func (h *handlers) about(c *gin.Context) {
	c.JSON(http.StatusOK, AboutView{
		Title:   "EventEase",
		Summary: "Discover events, register in a few clicks and keep your tickets in one place.",
	})
}

func (h *handlers) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, PageView{Page: name, Session: currentSession(c)})
	}
}

// @Summary  Log in
// @Param    req body LoginRequest true "credentials"
// @Success  200 {object} LoginResponse
// @Failure  401 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /login [post]
func (h *handlers) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	u, err := h.svcs.Auth.Login(ctx, req.Email, req.Password, "ip:"+c.ClientIP())
	if err != nil {
		respondErr(c, err)
		return
	}

	token, err := h.svcs.Sessions.Set(ctx, domain.Session{
		UserID:      u.ID,
		Role:        u.Role,
		DisplayName: u.FullName,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	// No Max-Age: the cookie dies with the browser session.
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	c.JSON(http.StatusOK, LoginResponse{
		Token:      token,
		Welcome:    "Welcome back, " + u.FullName + "!",
		User:       u.Profile(),
		RedirectTo: access.PathHome,
	})
}

// @Summary  Create an account
// @Param    req body RegisterRequest true "account"
// @Success  201 {object} RedirectResponse
// @Failure  400 {object} ErrorResponse
// @Failure  403 {object} ErrorResponse "invalid admin code"
// @Failure  409 {object} ErrorResponse "email taken"
// @Router   /register [post]
func (h *handlers) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	_, err := h.svcs.Auth.Register(c.Request.Context(), auth.RegisterInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		AdminCode: req.AdminCode,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, RedirectResponse{
		Message:    "Registration successful. Please log in.",
		RedirectTo: access.PathLogin,
	})
}

// --- Signed in ---

// @Summary  Home view with featured upcoming events
// @Security BearerAuth
// @Success  200 {object} HomeView
// @Router   / [get]
func (h *handlers) home(c *gin.Context) {
	events, err := h.svcs.Catalog.ListEvents(c.Request.Context())
	if err != nil {
		h.logger.Error("list events for home", slog.Any("err", err))
	}

	c.JSON(http.StatusOK, HomeView{
		Session:  currentSession(c),
		Featured: catalog.Featured(events, h.opts.Now(), catalog.FeaturedCount),
	})
}

// @Summary  List events
// @Security BearerAuth
// @Success  200 {array} domain.Event
// @Router   /events [get]
func (h *handlers) listEvents(c *gin.Context) {
	events, err := h.svcs.Catalog.ListEvents(c.Request.Context())
	if err != nil {
		h.logger.Error("list events", slog.Any("err", err))
	}
	if events == nil {
		events = []domain.Event{}
	}

	writeJSONWithCache(c, http.StatusOK, events, "private, max-age=30")
}

// @Summary  Event detail with registration state
// @Security BearerAuth
// @Param    id path string true "Event ID (uuid)"
// @Success  200 {object} EventDetailView
// @Failure  404 {object} ErrorResponse
// @Router   /events/{id} [get]
func (h *handlers) getEvent(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	view := EventDetailView{Action: actionRegister}

	event, err := h.svcs.Catalog.GetEvent(ctx, eventID)
	switch {
	case errors.Is(err, catalog.ErrEventNotFound):
		respondErr(c, err)
		return
	case err != nil:
		h.logger.Error("get event", slog.String("event_id", eventID.String()), slog.Any("err", err))
		view.Event = &domain.Event{ID: eventID}
		view.Stale = true
	default:
		view.Event = event
	}

	d, err := h.svcs.Registration.Check(ctx, currentSession(c), eventID)
	if err != nil {
		h.logger.Error("registration check", slog.String("event_id", eventID.String()), slog.Any("err", err))
	} else if d == registration.DecisionAlreadyRegistered {
		view.Registered = true
		view.Action = actionRegistered
	}

	c.JSON(http.StatusOK, view)
}

// @Summary  Payment summary for an event
// @Security BearerAuth
// @Param    id path string true "Event ID (uuid)"
// @Success  200 {object} PaymentSummaryView
// @Failure  404 {object} ErrorResponse
// @Router   /payment/{id} [get]
func (h *handlers) paymentSummary(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	event, err := h.svcs.Catalog.GetEvent(c.Request.Context(), eventID)
	if errors.Is(err, catalog.ErrEventNotFound) {
		respondErr(c, err)
		return
	}
	if err != nil {
		h.logger.Error("get event for payment", slog.String("event_id", eventID.String()), slog.Any("err", err))
		c.JSON(http.StatusOK, PaymentSummaryView{EventID: eventID.String(), Stale: true})
		return
	}

	c.JSON(http.StatusOK, PaymentSummaryView{
		EventID:    event.ID.String(),
		Title:      event.Title,
		PriceCents: event.PriceCents,
	})
}

// @Summary  Start checkout
// @Security BearerAuth
// @Param    id path string true "Event ID (uuid)"
// @Success  200 {object} CheckoutResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "already registered"
// @Failure  502 {object} ErrorResponse "payment failed to initialize"
// @Router   /payment/{id} [post]
func (h *handlers) startCheckout(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	checkoutURL, err := h.svcs.Payment.StartCheckout(c.Request.Context(), currentSession(c), eventID)
	if err != nil {
		h.logger.Warn("start checkout", slog.String("event_id", eventID.String()), slog.Any("err", err))
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{CheckoutURL: checkoutURL})
}

// @Summary  Dashboard; reconciles a payment return
// @Description With status=success and eventId the booking is created once and
// @Description the browser is sent to the bare /dashboard with a one-time notice.
// @Security BearerAuth
// @Param    status  query string false "payment status"
// @Param    eventId query string false "Event ID (uuid)"
// @Param    tz      query string false "viewer's IANA time zone, also read from X-Timezone"
// @Success  200 {object} DashboardView
// @Success  303 {string} string "redirect to /dashboard"
// @Router   /dashboard [get]
func (h *handlers) dashboard(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		c.Redirect(http.StatusSeeOther, access.PathLogin)
		return
	}

	loc, tz := h.viewerLocation(c)

	out, err := h.svcs.Reconcile.Reconcile(c.Request.Context(), *sess, reconcile.ParseReturn(c.Request.URL.Query()), loc)
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusServiceUnavailable)
		return
	}

	if out.ReplaceWith != "" {
		setFlash(c, out.Notice, h.opts.CookieSecure)

		target := out.ReplaceWith
		if tz != "" && c.Query(tzParam) != "" {
			target += "?" + url.Values{tzParam: {tz}}.Encode()
		}
		c.Redirect(http.StatusSeeOther, target)
		return
	}

	c.JSON(http.StatusOK, DashboardView{
		Notice: popFlash(c, h.opts.CookieSecure).Message(),
		View:   out.View,
	})
}

// viewerLocation resolves the zone the viewer's day starts in, from the
// tz query value or the X-Timezone header. Unknown names fall back to the
// server's zone.
func (h *handlers) viewerLocation(c *gin.Context) (*time.Location, string) {
	name := c.Query(tzParam)
	if name == "" {
		name = c.GetHeader(tzHeader)
	}
	if name == "" {
		return nil, ""
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		h.logger.Debug("ignoring viewer time zone", slog.String("tz", name), slog.Any("err", err))
		return nil, ""
	}

	return loc, name
}

// @Summary  Current user's profile
// @Security BearerAuth
// @Success  200 {object} ProfileResponse
// @Router   /profile [get]
func (h *handlers) getProfile(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		c.Redirect(http.StatusSeeOther, access.PathLogin)
		return
	}

	p, err := h.svcs.Auth.GetUser(c.Request.Context(), sess.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		respondErr(c, err)
		return
	}
	if err != nil {
		h.logger.Error("get profile", slog.String("user_id", sess.UserID.String()), slog.Any("err", err))
		c.JSON(http.StatusOK, ProfileResponse{
			Profile: domain.Profile{ID: sess.UserID, FullName: sess.DisplayName, Role: sess.Role},
			Stale:   true,
		})
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Profile: *p})
}

// @Summary  Update the current user's profile
// @Security BearerAuth
// @Param    req body UpdateProfileRequest true "profile"
// @Success  200 {object} ProfileResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "email taken"
// @Router   /profile [put]
func (h *handlers) updateProfile(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		c.Redirect(http.StatusSeeOther, access.PathLogin)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	p, err := h.svcs.Auth.UpdateProfile(ctx, sess.UserID, domain.ProfileUpdate{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	if token, ok := session.TokenFromContext(ctx); ok {
		if err := h.svcs.Sessions.Refresh(ctx, token, p.FullName); err != nil {
			h.logger.Warn("refresh session display name", slog.Any("err", err))
		}
	}

	c.JSON(http.StatusOK, ProfileResponse{Profile: *p, RedirectTo: "/profile"})
}

// @Summary  Log out
// @Security BearerAuth
// @Success  200 {object} RedirectResponse
// @Router   /profile/logout [post]
func (h *handlers) logout(c *gin.Context) {
	ctx := c.Request.Context()

	if token, ok := session.TokenFromContext(ctx); ok {
		if err := h.svcs.Sessions.Clear(ctx, token); err != nil {
			h.logger.Warn("clear session", slog.Any("err", err))
		}
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	c.JSON(http.StatusOK, RedirectResponse{RedirectTo: access.PathLogin})
}

// --- Admin ---

// @Summary  Admin dashboard: events and all registrations
// @Security BearerAuth
// @Success  200 {object} AdminDashboardView
// @Router   /admin/dashboard [get]
func (h *handlers) adminDashboard(c *gin.Context) {
	events, regs, err := h.svcs.Admin.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.Error("admin dashboard", slog.Any("err", err))
	}

	c.JSON(http.StatusOK, buildAdminDashboard(events, regs))
}

func buildAdminDashboard(events []domain.Event, regs []domain.Registration) AdminDashboardView {
	counts := make(map[uuid.UUID]int, len(events))
	for _, r := range regs {
		if r.Event != nil {
			counts[r.Event.ID]++
		}
	}

	rows := make([]AdminEventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, AdminEventRow{Event: e, Registrations: counts[e.ID]})
	}

	if regs == nil {
		regs = []domain.Registration{}
	}

	return AdminDashboardView{
		Events:             rows,
		Registrations:      regs,
		TotalRegistrations: len(regs),
	}
}

// @Summary  Registrations of one event
// @Security BearerAuth
// @Param    id path string true "Event ID (uuid)"
// @Success  200 {object} EventRegistrationsView
// @Failure  404 {object} ErrorResponse
// @Router   /admin/registrations/{id} [get]
func (h *handlers) eventRegistrations(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	event, regs, err := h.svcs.Admin.EventRegistrations(c.Request.Context(), eventID)
	if errors.Is(err, admin.ErrEventNotFound) {
		respondErr(c, err)
		return
	}
	if err != nil {
		h.logger.Error("event registrations", slog.String("event_id", eventID.String()), slog.Any("err", err))
		c.JSON(http.StatusOK, EventRegistrationsView{
			Event:         &domain.Event{ID: eventID},
			Registrations: []domain.Registration{},
			Stale:         true,
		})
		return
	}

	if regs == nil {
		regs = []domain.Registration{}
	}

	c.JSON(http.StatusOK, EventRegistrationsView{Event: event, Registrations: regs})
}

// @Summary  Delete an event; its bookings become orphaned
// @Security BearerAuth
// @Param    id path string true "Event ID (uuid)"
// @Success  200 {object} DeleteEventResponse
// @Failure  404 {object} ErrorResponse
// @Router   /admin/events/{id} [delete]
func (h *handlers) deleteEvent(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	n, err := h.svcs.Admin.DeleteEvent(c.Request.Context(), eventID)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteEventResponse{OrphanedBookings: n})
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var rl auth.RateLimitedError
	var input auth.InputError

	switch {
	// auth service
	case errors.As(err, &rl):
		c.Header("Retry-After", strconv.Itoa(int(rl.RetryAfter.Seconds()+0.5)))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many login attempts"})
	case errors.As(err, &input):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: input.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: msgInvalidCredentials})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
	case errors.Is(err, auth.ErrInvalidAdminCode):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "invalid admin code"})
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
	// catalog and admin services
	case errors.Is(err, catalog.ErrEventNotFound),
		errors.Is(err, admin.ErrEventNotFound),
		errors.Is(err, payment.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	// payment service
	case errors.Is(err, payment.ErrLoginRequired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "login required", RedirectTo: access.PathLogin})
	case errors.Is(err, payment.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already registered for this event"})
	case errors.Is(err, payment.ErrCheckoutFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: msgPaymentFailed})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
