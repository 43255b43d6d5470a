// Package handlers implements the form and target generation endpoints.
package handlers

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/treychaffin/TargetGenerator/internal/config"
	"github.com/treychaffin/TargetGenerator/internal/domain"
	"github.com/treychaffin/TargetGenerator/internal/infra/logging"
	"github.com/treychaffin/TargetGenerator/internal/render"
)

// TargetService bundles the configuration for target generation requests.
type TargetService struct {
	Config *config.Config
}

// NewTargetService creates a new TargetService instance.
func NewTargetService(cfg config.Config) *TargetService {
	return &TargetService{Config: &cfg}
}

// targetParams holds validated input plus the raw strings for form echo.
type targetParams struct {
	Request domain.TargetRequest
	Paper   string
	Page    domain.Page
	form    formData
}

// HandleForm serves the parameter form.
func (svc *TargetService) HandleForm(c *fiber.Ctx) error {
	return renderForm(c, svc.defaultForm())
}

// HandleGenerate validates the submitted form, computes the grid layout,
// renders the PDF, and streams it back as an attachment. Invalid input
// re-renders the form with an inline message rather than failing the
// request.
func (svc *TargetService) HandleGenerate(c *fiber.Ctx) error {
	params, err := svc.parseTargetForm(c)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParameter) {
			params.form.Error = userMessage(err)
			return renderForm(c, params.form)
		}
		return err
	}

	spec, err := domain.NewGridSpec(params.Request, params.Page, domain.Layout{
		MarginIn:  svc.Config.Target.MarginInches,
		MinTickIn: svc.Config.Target.MinTickInches,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParameter) {
			params.form.Error = userMessage(err)
			return renderForm(c, params.form)
		}
		return err
	}

	doc, err := render.Render(spec)
	if err != nil {
		logging.Error("Target rendering failed", "error", err.Error())
		return fiber.NewError(fiber.StatusInternalServerError, "target generation failed")
	}

	filename := targetFilename(params.Request)
	requestID := c.Get("X-Request-ID")
	logging.Info("Target generated",
		"filename", filename,
		"distance", params.Request.Distance,
		"unit", params.Request.Unit,
		"moa", params.Request.MOA,
		"paper", params.Paper,
		"request_id", requestID,
	)

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(doc)
}

func (svc *TargetService) defaultForm() formData {
	t := svc.Config.Target
	return formData{
		Distance:  strconv.FormatFloat(t.DefaultDistance, 'f', -1, 64),
		Unit:      string(domain.UnitYards),
		MOA:       strconv.FormatFloat(t.DefaultMOA, 'f', -1, 64),
		Paper:     t.DefaultPaper,
		Thickness: strconv.FormatFloat(t.DefaultThickIn, 'f', -1, 64),
		Rings:     "0",
		Labels:    true,
		Papers:    svc.paperNames(),
	}
}

func (svc *TargetService) paperNames() []string {
	names := make([]string, 0, len(svc.Config.Target.PaperSizes))
	for name := range svc.Config.Target.PaperSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseTargetForm validates the form fields and assembles the request.
// Every failure wraps domain.ErrInvalidParameter so the caller can
// re-render the form.
func (svc *TargetService) parseTargetForm(c *fiber.Ctx) (*targetParams, error) {
	t := svc.Config.Target

	params := &targetParams{form: svc.defaultForm()}
	form := &params.form
	form.Distance = strings.TrimSpace(c.FormValue("distance"))
	form.Unit = strings.TrimSpace(c.FormValue("unit"))
	form.MOA = strings.TrimSpace(c.FormValue("moa"))
	form.Paper = strings.ToUpper(strings.TrimSpace(c.FormValue("paper")))
	form.Thickness = strings.TrimSpace(c.FormValue("thickness"))
	form.Rings = strings.TrimSpace(c.FormValue("rings"))
	form.Labels = c.FormValue("labels") != ""

	unit, err := domain.ParseUnit(form.Unit)
	if err != nil {
		return params, err
	}
	form.Unit = string(unit)

	distance, err := parseFloatField("distance", form.Distance)
	if err != nil {
		return params, err
	}
	if distance <= 0 || distance > t.MaxDistance {
		return params, fmt.Errorf("%w: distance must be between 0 and %g %s", domain.ErrInvalidParameter, t.MaxDistance, unit)
	}

	moa, err := parseFloatField("moa", form.MOA)
	if err != nil {
		return params, err
	}
	if moa <= 0 || moa > t.MaxMOA {
		return params, fmt.Errorf("%w: moa must be between 0 and %g", domain.ErrInvalidParameter, t.MaxMOA)
	}

	thickness := t.DefaultThickIn
	if form.Thickness != "" {
		thickness, err = parseFloatField("thickness", form.Thickness)
		if err != nil {
			return params, err
		}
		if thickness < 0 || thickness > t.MaxThicknessIn {
			return params, fmt.Errorf("%w: thickness must be between 0 and %g inches", domain.ErrInvalidParameter, t.MaxThicknessIn)
		}
	}

	rings := 0
	if form.Rings != "" {
		rings, err = strconv.Atoi(form.Rings)
		if err != nil {
			return params, fmt.Errorf("%w: rings must be a whole number", domain.ErrInvalidParameter)
		}
		if rings < 0 || rings > t.MaxAimRings {
			return params, fmt.Errorf("%w: rings must be between 0 and %d", domain.ErrInvalidParameter, t.MaxAimRings)
		}
	}

	paperName := form.Paper
	if paperName == "" {
		paperName = t.DefaultPaper
		form.Paper = paperName
	}
	paper, ok := t.PaperSizes[paperName]
	if !ok {
		return params, fmt.Errorf("%w: unsupported paper size %q", domain.ErrInvalidParameter, paperName)
	}

	params.Request = domain.TargetRequest{
		Distance:          distance,
		Unit:              unit,
		MOA:               moa,
		DiagonalThickness: thickness,
		QuadrantLabels:    form.Labels,
		AimRings:          rings,
	}
	params.Paper = paperName
	params.Page = domain.Page{WidthIn: paper.Width, HeightIn: paper.Height}
	return params, nil
}

func parseFloatField(name, raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidParameter, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidParameter, name)
	}
	return v, nil
}

// userMessage strips the sentinel prefix so the form shows only the detail.
func userMessage(err error) string {
	msg := err.Error()
	if cut, ok := strings.CutPrefix(msg, domain.ErrInvalidParameter.Error()+": "); ok {
		return cut
	}
	return msg
}

// targetFilename derives the download name from the request, dots replaced
// so the name stays filesystem friendly: 100_yards_0-25_moa.pdf.
func targetFilename(req domain.TargetRequest) string {
	d := strings.ReplaceAll(strconv.FormatFloat(req.Distance, 'f', -1, 64), ".", "-")
	m := strings.ReplaceAll(strconv.FormatFloat(req.MOA, 'f', -1, 64), ".", "-")
	return fmt.Sprintf("%s_%s_%s_moa.pdf", d, req.Unit, m)
}
