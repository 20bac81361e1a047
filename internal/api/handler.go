package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spigell/salary-spy/internal/export"
	"github.com/spigell/salary-spy/internal/lookup"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc          *lookup.Service
	gateway      Gateway
	voiceEnabled bool
}

func NewHandler(svc *lookup.Service, gateway Gateway, voiceEnabled bool) *Handler {
	return &Handler{svc: svc, gateway: gateway, voiceEnabled: voiceEnabled}
}

// StatusResponse describes what the running instance can serve.
type StatusResponse struct {
	Store StoreStatus `json:"store"`
	Voice VoiceStatus `json:"voice"`
}

type StoreStatus struct {
	Driver    string `json:"driver"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type VoiceStatus struct {
	Enabled bool `json:"enabled"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) Search(c echo.Context) error {
	res, err := h.svc.Lookup(c.Request().Context(), c.QueryParam("company"), c.QueryParam("role"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to look up salaries", Error: err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

// Export streams the lookup result as an xlsx workbook.
func (h *Handler) Export(c echo.Context) error {
	res, err := h.svc.Lookup(c.Request().Context(), c.QueryParam("company"), c.QueryParam("role"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to look up salaries", Error: err.Error()})
	}

	c.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportName(res)+`"`)
	c.Response().WriteHeader(http.StatusOK)

	return export.XLSX(c.Response(), res)
}

func exportName(res *lookup.Result) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(res.Query.Company+" "+res.Query.Role))
	if name = strings.Trim(name, "-"); name == "" {
		name = "salaries"
	}
	return name + ".xlsx"
}

func (h *Handler) Status(c echo.Context) error {
	resp := StatusResponse{Voice: VoiceStatus{Enabled: h.voiceEnabled}}
	if h.gateway != nil {
		resp.Store.Driver = h.gateway.Driver()
		resp.Store.Available = h.gateway.Available()
		if reason := h.gateway.Reason(); reason != nil {
			resp.Store.Reason = reason.Error()
		}
	}
	return c.JSON(http.StatusOK, resp)
}
