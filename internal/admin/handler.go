// Package admin serves the staff control surface: verification, scheduler
// control, county administration and identity exports.
package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"discadian/internal/county"
	"discadian/internal/identity"
	"discadian/internal/platform/config"
	"discadian/internal/platform/middleware"
	"discadian/internal/reconcile"
	"discadian/internal/report"
	"discadian/internal/verification"
	dErrors "discadian/pkg/domain-errors"
	"discadian/pkg/platform/httputil"
)

// Verifier commits staff verifications.
type Verifier interface {
	Verify(ctx context.Context, cmd verification.Command) (verification.Receipt, error)
}

// Scheduler controls periodic reconciliation.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop()
	Enable()
	Disable()
	TriggerNow() error
	Status() reconcile.Status
}

// Counties administers county tables.
type Counties interface {
	List(nationUUIDOrName string) ([]county.Summary, error)
	EnableNation(nationName, nationUUID string) error
	CreateCounty(nation, countyName string, roleID config.Snowflake) error
	DeleteCounty(ctx context.Context, nation, countyName string) (county.UnassignResult, error)
	SetNoCountyRole(nation string, roleID config.Snowflake) error
	Assign(ctx context.Context, nation, countyName, town string) (county.AssignResult, error)
	Unassign(ctx context.Context, nation, town string) (county.UnassignResult, error)
	Rename(ctx context.Context, nation, oldName, newName string) (county.RenameResult, error)
}

// Identities reads the verification cache.
type Identities interface {
	GetByDiscordID(discordID string) (identity.Identity, bool)
	Stats() identity.Stats
	WriteCSV(w io.Writer) error
}

// Reports lists recent staff reports.
type Reports interface {
	Recent(n int) []report.Event
}

// Handler serves the admin API.
type Handler struct {
	verifier   Verifier
	scheduler  Scheduler
	counties   Counties
	identities Identities
	reports    Reports
	validator  middleware.JWTValidator
	logger     *slog.Logger
}

// New constructs an admin handler with its dependencies.
func New(verifier Verifier, scheduler Scheduler, counties Counties, identities Identities, reports Reports, validator middleware.JWTValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		verifier:   verifier,
		scheduler:  scheduler,
		counties:   counties,
		identities: identities,
		reports:    reports,
		validator:  validator,
		logger:     logger,
	}
}

// Register mounts the admin routes behind bearer authentication.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.validator, h.logger))

		r.Post("/verify", h.HandleVerify)

		r.Get("/scheduler", h.HandleSchedulerStatus)
		r.Post("/scheduler/start", h.HandleSchedulerStart)
		r.Post("/scheduler/stop", h.HandleSchedulerStop)
		r.Post("/scheduler/enable", h.HandleSchedulerEnable)
		r.Post("/scheduler/disable", h.HandleSchedulerDisable)
		r.Post("/scheduler/run", h.HandleSchedulerRun)

		r.Route("/nations/{nation}", func(r chi.Router) {
			r.Put("/county-system", h.HandleEnableCounties)
			r.Put("/no-county-role", h.HandleSetNoCountyRole)
			r.Get("/counties", h.HandleListCounties)
			r.Post("/counties", h.HandleCreateCounty)
			r.Delete("/counties/{county}", h.HandleDeleteCounty)
			r.Post("/counties/{county}/rename", h.HandleRenameCounty)
			r.Put("/counties/{county}/towns/{town}", h.HandleAssignTown)
			r.Delete("/towns/{town}/county", h.HandleUnassignTown)
		})

		r.Get("/identities/stats", h.HandleIdentityStats)
		r.Get("/identities/export", h.HandleExportIdentities)
		r.Get("/identities/{discordID}", h.HandleGetIdentity)

		r.Get("/reports", h.HandleRecentReports)
	})
}

// HandleVerify handles POST /admin/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimw.GetReqID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	adminID := middleware.GetAdminID(ctx)

	receipt, err := h.verifier.Verify(ctx, verification.Command{
		GuildID:         req.GuildID,
		DiscordID:       req.DiscordID,
		DiscordUsername: req.DiscordUsername,
		IGN:             req.IGN,
		Nation:          req.Nation,
		AdminID:         adminID,
	})
	if err != nil {
		h.logger.InfoContext(ctx, "verification refused",
			"request_id", requestID,
			"admin_id", adminID,
			"discord_id", req.DiscordID,
			"ign", req.IGN,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification committed",
		"request_id", requestID,
		"admin_id", adminID,
		"discord_id", req.DiscordID,
		"player_uuid", receipt.Result.PlayerUUID,
		"partial", receipt.Partial,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(receipt))
}

func (h *Handler) HandleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.scheduler.Status())
}

// HandleSchedulerStart starts the check loop. The loop outlives the request.
func (h *Handler) HandleSchedulerStart(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.Start(context.WithoutCancel(r.Context())); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.audit(r, "scheduler_started")
	httputil.WriteJSON(w, http.StatusOK, h.scheduler.Status())
}

func (h *Handler) HandleSchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Stop()
	h.audit(r, "scheduler_stopped")
	httputil.WriteJSON(w, http.StatusOK, h.scheduler.Status())
}

func (h *Handler) HandleSchedulerEnable(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Enable()
	h.audit(r, "scheduler_enabled")
	httputil.WriteJSON(w, http.StatusOK, h.scheduler.Status())
}

func (h *Handler) HandleSchedulerDisable(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Disable()
	h.audit(r, "scheduler_disabled")
	httputil.WriteJSON(w, http.StatusOK, h.scheduler.Status())
}

// HandleSchedulerRun starts a run immediately and returns without waiting.
func (h *Handler) HandleSchedulerRun(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.TriggerNow(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.audit(r, "reconciliation_triggered")
	httputil.WriteJSON(w, http.StatusAccepted, h.scheduler.Status())
}

func (h *Handler) HandleEnableCounties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[EnableCountiesRequest](w, r, h.logger, ctx, chimw.GetReqID(ctx))
	if !ok {
		return
	}
	nation := chi.URLParam(r, "nation")
	if err := h.counties.EnableNation(nation, req.NationUUID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.audit(r, "county_system_enabled", "nation", nation)
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "County system enabled for `" + nation + "`."})
}

func (h *Handler) HandleSetNoCountyRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RoleRequest](w, r, h.logger, ctx, chimw.GetReqID(ctx))
	if !ok {
		return
	}
	nation := chi.URLParam(r, "nation")
	if err := h.counties.SetNoCountyRole(nation, req.RoleID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.audit(r, "no_county_role_set", "nation", nation, "role_id", req.RoleID)
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "No-county role updated."})
}

func (h *Handler) HandleListCounties(w http.ResponseWriter, r *http.Request) {
	counties, err := h.counties.List(chi.URLParam(r, "nation"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, countiesResponse{Counties: counties, Total: len(counties)})
}

func (h *Handler) HandleCreateCounty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateCountyRequest](w, r, h.logger, ctx, chimw.GetReqID(ctx))
	if !ok {
		return
	}
	nation := chi.URLParam(r, "nation")
	if err := h.counties.CreateCounty(nation, req.Name, req.RoleID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.audit(r, "county_created", "nation", nation, "county", req.Name)
	httputil.WriteJSON(w, http.StatusCreated, county.Summary{Name: req.Name, RoleID: req.RoleID, Towns: []string{}})
}

func (h *Handler) HandleDeleteCounty(w http.ResponseWriter, r *http.Request) {
	nation, name := chi.URLParam(r, "nation"), chi.URLParam(r, "county")
	res, err := h.counties.DeleteCounty(r.Context(), nation, name)
	if err != nil {
		h.propagationFailed(w, r, err, res)
		return
	}
	h.audit(r, "county_deleted", "nation", nation, "county", name)
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleRenameCounty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RenameCountyRequest](w, r, h.logger, ctx, chimw.GetReqID(ctx))
	if !ok {
		return
	}
	nation, name := chi.URLParam(r, "nation"), chi.URLParam(r, "county")
	res, err := h.counties.Rename(ctx, nation, name, req.NewName)
	if err != nil {
		h.propagationFailed(w, r, err, res)
		return
	}
	h.audit(r, "county_renamed", "nation", nation, "county", name, "new_name", req.NewName)
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleAssignTown(w http.ResponseWriter, r *http.Request) {
	nation, name, town := chi.URLParam(r, "nation"), chi.URLParam(r, "county"), chi.URLParam(r, "town")
	res, err := h.counties.Assign(r.Context(), nation, name, town)
	if err != nil {
		h.propagationFailed(w, r, err, res)
		return
	}
	h.audit(r, "town_assigned", "nation", nation, "county", name, "town_uuid", res.TownUUID)
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleUnassignTown(w http.ResponseWriter, r *http.Request) {
	nation, town := chi.URLParam(r, "nation"), chi.URLParam(r, "town")
	res, err := h.counties.Unassign(r.Context(), nation, town)
	if err != nil {
		h.propagationFailed(w, r, err, res)
		return
	}
	h.audit(r, "town_unassigned", "nation", nation, "town", town)
	httputil.WriteJSON(w, http.StatusOK, res)
}

// propagationFailed writes err. When the table change was committed but
// updating cached identities failed, the partial result is logged.
func (h *Handler) propagationFailed(w http.ResponseWriter, r *http.Request, err error, partial any) {
	if dErrors.HasCode(err, dErrors.CodePersistenceFailure) {
		h.logger.ErrorContext(r.Context(), "county change not fully applied",
			"request_id", chimw.GetReqID(r.Context()),
			"result", partial,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) HandleIdentityStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.identities.Stats())
}

func (h *Handler) HandleGetIdentity(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")
	rec, ok := h.identities.GetByDiscordID(discordID)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no verified identity for discord id "+discordID))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleExportIdentities streams the verification cache as CSV.
func (h *Handler) HandleExportIdentities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="verified_users.csv"`)
	if err := h.identities.WriteCSV(w); err != nil {
		h.logger.ErrorContext(r.Context(), "identity export failed",
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
	}
}

func (h *Handler) HandleRecentReports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	events := h.reports.Recent(limit)
	httputil.WriteJSON(w, http.StatusOK, reportsResponse{Reports: events, Total: len(events)})
}

func (h *Handler) audit(r *http.Request, event string, attrs ...any) {
	ctx := r.Context()
	attrs = append(attrs,
		"log_type", "audit",
		"admin_id", middleware.GetAdminID(ctx),
		"request_id", chimw.GetReqID(ctx),
	)
	h.logger.InfoContext(ctx, event, attrs...)
}
