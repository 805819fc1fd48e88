package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/open-elt/open-elt/internal/metrics"
	"github.com/open-elt/open-elt/internal/oauth"
	"github.com/open-elt/open-elt/internal/store"
)

// DefinitionResolver maps a source definition ID to its provider kind.
type DefinitionResolver interface {
	GetSourceDefinition(ctx context.Context, id uuid.UUID) (store.SourceDefinition, error)
}

// Handlers groups the OAuth HTTP handlers and their dependencies. Emitter
// may be nil.
type Handlers struct {
	Definitions DefinitionResolver
	Flows       *oauth.Registry
	Emitter     *metrics.Emitter
}

type consentURLRequest struct {
	WorkspaceID        uuid.UUID `json:"workspaceId"`
	SourceDefinitionID uuid.UUID `json:"sourceDefinitionId"`
	RedirectURL        string    `json:"redirectUrl"`
}

type consentURLResponse struct {
	ConsentURL string `json:"consentUrl"`
}

type completeOAuthRequest struct {
	WorkspaceID        uuid.UUID         `json:"workspaceId"`
	SourceDefinitionID uuid.UUID         `json:"sourceDefinitionId"`
	RedirectURL        string            `json:"redirectUrl"`
	QueryParams        map[string]string `json:"queryParams"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) HandleGetConsentURL(c *echo.Context) error {
	var req consentURLRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if req.WorkspaceID == uuid.Nil || req.SourceDefinitionID == uuid.Nil || req.RedirectURL == "" {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "workspaceId, sourceDefinitionId and redirectUrl are required"})
	}

	flow, err := h.flowFor(c.Request().Context(), req.SourceDefinitionID)
	if err != nil {
		return h.writeError(c, err)
	}

	consentURL, err := flow.ConsentURL(c.Request().Context(), req.WorkspaceID, req.SourceDefinitionID, req.RedirectURL)
	if err != nil {
		return h.writeError(c, err)
	}

	h.Emitter.Count(metrics.OAuthConsentURLsTotal, 1)
	h.Emitter.Count(metrics.OAuthParamsResolvedTotal, 1)
	return c.JSON(http.StatusOK, consentURLResponse{ConsentURL: consentURL})
}

func (h *Handlers) HandleCompleteOAuth(c *echo.Context) error {
	var req completeOAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if req.WorkspaceID == uuid.Nil || req.SourceDefinitionID == uuid.Nil || req.RedirectURL == "" {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "workspaceId, sourceDefinitionId and redirectUrl are required"})
	}

	flow, err := h.flowFor(c.Request().Context(), req.SourceDefinitionID)
	if err != nil {
		return h.writeError(c, err)
	}

	start := time.Now()
	payload, err := flow.CompleteOAuth(c.Request().Context(), req.WorkspaceID, req.SourceDefinitionID, req.QueryParams, req.RedirectURL)
	h.Emitter.Timing(metrics.OAuthTokenExchangeMillis, time.Since(start))
	if err != nil {
		h.Emitter.Count(metrics.OAuthCompletionErrors, 1)
		return h.writeError(c, err)
	}

	h.Emitter.Count(metrics.OAuthCompletionsTotal, 1)
	h.Emitter.Count(metrics.OAuthParamsResolvedTotal, 1)
	return c.JSON(http.StatusOK, payload)
}

func (h *Handlers) flowFor(ctx context.Context, definitionID uuid.UUID) (oauth.Flow, error) {
	def, err := h.Definitions.GetSourceDefinition(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	flow, ok := h.Flows.Get(def.Kind)
	if !ok {
		return nil, errors.Join(store.ErrDefinitionNotFound,
			errors.New("no oauth flow registered for kind "+def.Kind))
	}
	return flow, nil
}

func (h *Handlers) writeError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrDefinitionNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "source definition not found"})
	case errors.Is(err, oauth.ErrConfigNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "oauth parameter not configured for scope"})
	case oauth.IsValidation(err):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		slog.Error("oauth operation failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "upstream provider request failed"})
	}
}
