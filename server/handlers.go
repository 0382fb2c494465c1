package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skosovsky/textops"
)

type errorResponse struct {
	Error string `json:"error"`
}

func owner(c *gin.Context) string {
	return c.GetHeader(OwnerHeader)
}

// bind decodes the request body with ex. An empty body decodes as "{}".
func bind[T any](c *gin.Context, ex *textops.Extractor[T]) (T, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var zero T
		writeError(c, &textops.ClientError{Reason: "read body: " + err.Error()})
		return zero, false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	v, err := ex.ParseAndValidate(body)
	if err != nil {
		writeError(c, err)
		return v, false
	}
	return v, true
}

func statusOf(err error) int {
	switch {
	case textops.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, textops.ErrRoutineNotFound),
		errors.Is(err, textops.ErrStepNotFound),
		errors.Is(err, textops.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, textops.ErrStepImmutable),
		errors.Is(err, textops.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusOf(err), errorResponse{Error: err.Error()})
}

// engineFor returns the engine evaluating with the named strategy.
func (s *Server) engineFor(backend string) (*textops.Engine, error) {
	ev, ok := s.service.Strategy(backend)
	if !ok {
		return nil, &textops.ClientError{Reason: "unknown backend " + backend, Err: textops.ErrValidation}
	}
	return s.engine.WithEvaluator(ev), nil
}

func (s *Server) handleTools(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Tools())
}

func (s *Server) handleStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Strategies())
}

func (s *Server) handleEvaluate(c *gin.Context) {
	req, ok := bind(c, s.evaluate)
	if !ok {
		return
	}
	engine, err := s.engineFor(req.Backend)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, engine.EvaluateTask(c.Request.Context(), req.Text, req.TaskDescription, req.ExampleOutput))
}

func (s *Server) handleConvert(c *gin.Context) {
	req, ok := bind(c, s.convert)
	if !ok {
		return
	}
	engine, err := s.engineFor(req.Backend)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, engine.ProcessRequest(c.Request.Context(), textops.Request{
		Text:            req.Text,
		TaskDescription: req.TaskDescription,
		ExampleOutput:   req.ExampleOutput,
		ToolArgs:        req.ToolArgs,
	}))
}

func (s *Server) handleExecute(c *gin.Context) {
	req, ok := bind(c, s.execute)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.engine.ExecuteTool(c.Request.Context(), req.Tool, req.Text, req.Args))
}

func (s *Server) handleListRoutines(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.List(owner(c)))
}

func (s *Server) handleCreateRoutine(c *gin.Context) {
	req, ok := bind(c, s.createRoutine)
	if !ok {
		return
	}
	r, err := s.service.Create(c.Request.Context(), owner(c), req.Name, req.Backend)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// ownedRoutine loads the routine in the path and hides routines of other owners.
func (s *Server) ownedRoutine(c *gin.Context) (*textops.Routine, bool) {
	r, err := s.service.Get(c.Param("id"))
	if err == nil && r.OwnerID != owner(c) {
		err = textops.ErrRoutineNotFound
	}
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return r, true
}

func (s *Server) handleGetRoutine(c *gin.Context) {
	if r, ok := s.ownedRoutine(c); ok {
		c.JSON(http.StatusOK, r)
	}
}

func (s *Server) handleAppendStep(c *gin.Context) {
	r, ok := s.ownedRoutine(c)
	if !ok {
		return
	}
	req, ok := bind(c, s.appendStep)
	if !ok {
		return
	}
	var (
		step *textops.WorkflowStep
		err  error
	)
	if req.FromPrevious {
		step, err = s.service.AppendFromPrevious(c.Request.Context(), r.ID)
	} else {
		step, err = s.service.AppendStep(c.Request.Context(), r.ID, textops.StepInput{
			Text:            req.Text,
			TaskDescription: req.TaskDescription,
			ExampleOutput:   req.ExampleOutput,
		})
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, step)
}

func (s *Server) handleRunStep(c *gin.Context) {
	r, ok := s.ownedRoutine(c)
	if !ok {
		return
	}
	req, ok := bind(c, s.runStep)
	if !ok {
		return
	}
	current, found := r.Step(c.Param("step"))
	if !found {
		writeError(c, textops.ErrStepNotFound)
		return
	}
	in := req.merge(current.Input)
	step, err := s.service.RunStep(c.Request.Context(), r.ID, current.ID, &in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

func (s *Server) handleSkipStep(c *gin.Context) {
	r, ok := s.ownedRoutine(c)
	if !ok {
		return
	}
	step, err := s.service.SkipStep(c.Request.Context(), r.ID, c.Param("step"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

func (s *Server) handleRetryStep(c *gin.Context) {
	r, ok := s.ownedRoutine(c)
	if !ok {
		return
	}
	step, err := s.service.RetryStep(c.Request.Context(), r.ID, c.Param("step"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, step)
}

func (s *Server) handleListTemplates(c *gin.Context) {
	ts, err := s.service.ListTemplates(c.Request.Context(), owner(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

func (s *Server) handleSaveTemplate(c *gin.Context) {
	req, ok := bind(c, s.saveTemplate)
	if !ok {
		return
	}
	var (
		t   textops.RoutineTemplate
		err error
	)
	if req.RoutineID != "" {
		r, getErr := s.service.Get(req.RoutineID)
		if getErr == nil && r.OwnerID != owner(c) {
			getErr = textops.ErrRoutineNotFound
		}
		if getErr != nil {
			writeError(c, getErr)
			return
		}
		t, err = s.service.SaveRoutineAsTemplate(c.Request.Context(), r.ID, req.Name, req.Description)
	} else {
		t, err = s.service.SaveTemplate(c.Request.Context(), req.template(owner(c)))
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleDeleteTemplate(c *gin.Context) {
	if err := s.service.DeleteTemplate(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReplayTemplate(c *gin.Context) {
	req, ok := bind(c, s.replay)
	if !ok {
		return
	}
	r, err := s.service.ReplayTemplate(c.Request.Context(), owner(c), c.Param("id"), req.Backend, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}
