package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/admissions-desk/internal/domain/review"
	"github.com/bryanwahyu/admissions-desk/internal/domain/screens"
	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
	"github.com/bryanwahyu/admissions-desk/internal/logger"
	"github.com/bryanwahyu/admissions-desk/internal/middleware"
)

// POST /v1/login
// Body: {"empid": "...", "password": "..."}
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		EmpID    string `json:"empid"`
		Password string `json:"password"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	sess, err := r.authSvc.Login(req.Context(), middleware.SanitizeString(body.EmpID), body.Password)
	if errors.Is(err, session.ErrLoginRejected) {
		middleware.RecordLogin(false)
	}
	if err != nil {
		return err
	}
	middleware.RecordLogin(true)
	writeJSON(w, http.StatusOK, map[string]string{
		"token":    string(sess.ID),
		"username": sess.DisplayName(),
		"email":    sess.DisplayEmail(),
	})
	return nil
}

// POST /v1/push-tokens
// Body: {"token": "..."}
func (r *Router) handlePushToken(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	reply, err := r.notifySvc.Register(req.Context(), body.Token)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "registered", "upstream": reply})
	return nil
}

// GET /v1/profile
func (r *Router) handleProfile(w http.ResponseWriter, req *http.Request) error {
	sess := middleware.GetSessionFromContext(req.Context())
	p, err := r.authSvc.Profile(req.Context(), sess.ID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

// POST /v1/logout
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) error {
	sess := middleware.GetSessionFromContext(req.Context())
	if err := r.authSvc.Logout(req.Context(), sess.ID); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	return nil
}

// GET /v1/dashboard
func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) error {
	writeJSON(w, http.StatusOK, r.screensSvc.Dashboard())
	return nil
}

// GET /v1/screens
func (r *Router) handleCatalog(w http.ResponseWriter, req *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]any{"screens": screens.Catalog()})
	return nil
}

// GET /v1/screens/{screen}?q=&page=
func (r *Router) handleView(w http.ResponseWriter, req *http.Request) error {
	name, err := screenParam(req)
	if err != nil {
		return err
	}
	page, err := middleware.ParsePage(req.URL.Query().Get("page"))
	if err != nil {
		return err
	}
	q, err := middleware.ValidateQuery(req.URL.Query().Get("q"))
	if err != nil {
		return err
	}
	v, err := r.screensSvc.View(name, q, page)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, v)
	return nil
}

// POST /v1/screens/{screen}/refresh
// A failed refresh answers 502 and the previous snapshot keeps being served.
func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request) error {
	name, err := screenParam(req)
	if err != nil {
		return err
	}
	ctx := logger.WithScreen(req.Context(), string(name))
	if err := r.screensSvc.Refresh(ctx, name); err != nil {
		return err
	}
	v, err := r.screensSvc.View(name, "", 1)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, v)
	return nil
}

// GET /v1/screens/{screen}/export.pdf?q=
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	name, err := screenParam(req)
	if err != nil {
		return err
	}
	q, err := middleware.ValidateQuery(req.URL.Query().Get("q"))
	if err != nil {
		return err
	}
	doc, err := r.screensSvc.Export(name, q)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(name)+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(doc)
	return err
}

type reviewResponse struct {
	*review.Review
	Details []review.Detail `json:"details"`
}

// GET /v1/applications/{number}
func (r *Router) handleApplication(w http.ResponseWriter, req *http.Request) error {
	number := chi.URLParam(req, "number")
	if err := middleware.ValidateApplicationNumber(number); err != nil {
		return err
	}
	sess := middleware.GetSessionFromContext(req.Context())
	rv, err := r.reviewSvc.Lookup(req.Context(), number, sess.DisplayName())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, reviewResponse{Review: rv, Details: rv.Details()})
	return nil
}

// GET /v1/applications/{number}/history?limit=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	number := chi.URLParam(req, "number")
	if err := middleware.ValidateApplicationNumber(number); err != nil {
		return err
	}
	limit, err := middleware.ValidateLimit(req.URL.Query().Get("limit"))
	if err != nil {
		return err
	}
	out, err := r.reviewSvc.History(req.Context(), number, limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
	return nil
}
