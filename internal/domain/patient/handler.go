package patient

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patientlist/internal/platform/fhir"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(fhirGroup *echo.Group) {
	fhirGroup.GET("/Patient", h.SearchPatientsFHIR)
	fhirGroup.OPTIONS("/Patient", h.Preflight)
	fhirGroup.GET("/Patient/:id", h.GetPatientFHIR)
}

func (h *Handler) SearchPatientsFHIR(c echo.Context) error {
	params := c.QueryParams()
	q := ParseQuery(params)

	patients, total, err := h.svc.SearchPatients(c.Request().Context(), q)
	if err != nil {
		return fhir.JSON(c, http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}

	resources := make([]interface{}, len(patients))
	for i, p := range patients {
		resources[i] = p.ToFHIR()
	}

	// Links carry the filters but re-state paging explicitly.
	filters := url.Values{}
	for k, v := range params {
		if k == "_count" || k == "_offset" {
			continue
		}
		filters[k] = v
	}
	bundle := fhir.NewSearchBundleWithLinks(resources, fhir.SearchBundleParams{
		BaseURL:  c.Request().URL.Path,
		QueryStr: filters.Encode(),
		Count:    q.Count,
		Offset:   q.Offset,
		Total:    total,
	})
	return fhir.JSON(c, http.StatusOK, bundle)
}

func (h *Handler) GetPatientFHIR(c echo.Context) error {
	id := c.Param("id")
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return fhir.JSON(c, http.StatusNotFound, fhir.NotFoundOutcome("Patient", id))
	}
	if err != nil {
		return fhir.JSON(c, http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	return fhir.JSON(c, http.StatusOK, p.ToFHIR())
}

// Preflight answers OPTIONS on the collection. The CORS middleware normally
// handles it first; this covers origins it declines.
func (h *Handler) Preflight(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
