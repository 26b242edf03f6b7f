package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"golact/adapters/fitting"
	"golact/domain/lactation"
	"golact/domain/model"
	"golact/ports"
)

// fitRequest is the JSON body shared by the fit and characteristic routes.
type fitRequest struct {
	Days   []float64 `json:"dim" binding:"required"`
	Yields []float64 `json:"milk" binding:"required"`
	Model  string    `json:"model" binding:"required"`

	Fitting           string                   `json:"fitting"`
	Breed             string                   `json:"breed"`
	Parity            int                      `json:"parity"`
	Region            string                   `json:"region"`
	Priors            string                   `json:"priors"`
	CustomPriors      *lactation.MilkBotPriors `json:"custom_priors"`
	PersistencyMethod string                   `json:"persistency_method"`
	LactationLength   string                   `json:"lactation_length"`
	MilkUnit          string                   `json:"milk_unit"`
	MilkBotMethod     string                   `json:"milkbot_method"`

	// Characteristic selects one characteristic; empty means all four on
	// the characteristics route.
	Characteristic string `json:"characteristic"`
}

func (r *fitRequest) prepare() (*lactation.PreparedInputs, error) {
	return lactation.PrepareInputs(lactation.RawInput{
		Days:              r.Days,
		Yields:            r.Yields,
		Model:             r.Model,
		Fitting:           r.Fitting,
		Breed:             r.Breed,
		Parity:            r.Parity,
		Region:            r.Region,
		Priors:            r.Priors,
		CustomPriors:      r.CustomPriors,
		PersistencyMethod: r.PersistencyMethod,
		LactationLength:   r.LactationLength,
		MilkUnit:          r.MilkUnit,
	})
}

func (r *fitRequest) options(apiKey string) fitting.FitOptions {
	return fitting.FitOptions{
		APIKey:        apiKey,
		MilkBotMethod: fitting.MilkBotMethod(r.MilkBotMethod),
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleModels lists every model with its parameter names and whether the
// frequentist fitter supports it.
func (s *Server) handleModels(c *gin.Context) {
	type modelInfo struct {
		Name     string   `json:"name"`
		Params   []string `json:"params"`
		Fittable bool     `json:"fittable"`
	}
	out := make([]modelInfo, 0)
	for _, spec := range model.All() {
		out = append(out, modelInfo{Name: string(spec.Name), Params: spec.Params, Fittable: spec.Fittable})
	}
	c.JSON(http.StatusOK, gin.H{"models": out})
}

func (s *Server) handleFit(c *gin.Context) {
	var req fitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.prepare()
	if err != nil {
		s.writeError(c, err)
		return
	}

	spec, params, err := s.fits.FitCurveParameters(c.Request.Context(), in, req.options(s.apiKey))
	if err != nil {
		s.writeError(c, err)
		return
	}

	named := make(map[string]float64, len(spec.Params))
	for i, p := range spec.Params {
		named[p] = params[i]
	}
	c.JSON(http.StatusOK, gin.H{
		"model":       string(spec.Name),
		"parameters":  named,
		"predictions": fitting.PredictSeries(spec, params, in.MaxDay()),
	})
}

func (s *Server) handleCharacteristics(c *gin.Context) {
	var req fitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.prepare()
	if err != nil {
		s.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.Characteristic != "" {
		value, err := s.chars.Calculate(ctx, in, req.Characteristic, req.options(s.apiKey))
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"characteristic": req.Characteristic, "value": value})
		return
	}

	values, err := s.chars.CalculateAll(ctx, in, req.options(s.apiKey))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make(map[string]float64, len(values))
	for ch, v := range values {
		out[string(ch)] = v
	}
	c.JSON(http.StatusOK, gin.H{"characteristics": out})
}

// testIntervalRequest carries raw test-day rows for the ICAR method.
type testIntervalRequest struct {
	Records []struct {
		Day         float64 `json:"dim"`
		Yield       float64 `json:"milk"`
		LactationID string  `json:"id"`
	} `json:"records" binding:"required"`
	// Persist stores records and computed totals when a repository is
	// configured.
	Persist bool `json:"persist"`
}

func (s *Server) handleTestInterval(c *gin.Context) {
	var req testIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records := make([]ports.TestDayRecord, 0, len(req.Records))
	for _, r := range req.Records {
		records = append(records, ports.TestDayRecord{Day: r.Day, Yield: r.Yield, LactationID: r.LactationID})
	}

	ctx := c.Request.Context()
	yields, err := s.tim.Estimate(ctx, records)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if req.Persist && s.repo != nil {
		if err := s.repo.SaveRecords(ctx, records); err != nil {
			s.writeError(c, err)
			return
		}
		if err := s.repo.SaveYields(ctx, yields); err != nil {
			s.writeError(c, err)
			return
		}
	}

	out := make([]gin.H, 0, len(yields))
	for _, y := range yields {
		out = append(out, gin.H{"id": y.LactationID, "total": y.Total})
	}
	c.JSON(http.StatusOK, gin.H{"yields": out})
}

// evaluateRequest evaluates a MilkBot curve from known parameters without
// fitting.
type evaluateRequest struct {
	Scale  float64   `json:"scale" binding:"required"`
	Ramp   float64   `json:"ramp" binding:"required"`
	Offset float64   `json:"offset"`
	Decay  float64   `json:"decay" binding:"required"`
	Days   []float64 `json:"dim" binding:"required"`
}

func (s *Server) handleEvaluateMilkBot(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spec, err := model.Parse(string(model.MilkBot))
	if err != nil {
		s.writeError(c, err)
		return
	}
	params := ports.MilkBotParams{Scale: req.Scale, Ramp: req.Ramp, Offset: req.Offset, Decay: req.Decay}
	tuple := params.Tuple()

	predictions := make([]float64, len(req.Days))
	for i, t := range req.Days {
		predictions[i] = spec.Eval(t, tuple)
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

func (s *Server) handleMilkBotVersion(c *gin.Context) {
	if s.mb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "milkbot client not configured"})
		return
	}
	version, err := s.mb.Version(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (s *Server) handleListYields(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no repository configured"})
		return
	}
	yields, err := s.repo.ListYields(c.Request.Context(), 100)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(yields))
	for _, y := range yields {
		out = append(out, gin.H{"id": y.LactationID, "total": y.Total})
	}
	c.JSON(http.StatusOK, gin.H{"yields": out})
}
