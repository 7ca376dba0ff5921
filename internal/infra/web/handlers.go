package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"food-rescue-rewards/internal/domain"
	"food-rescue-rewards/internal/domain/model"
	"food-rescue-rewards/internal/infra/logging"
	"food-rescue-rewards/internal/usecase"
)

type verifyRequest struct {
	QRData      json.RawMessage    `json:"qrData"`
	Quantity    float64            `json:"quantity,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Geolocation *model.Geolocation `json:"geolocation,omitempty"`
}

type anonymousRequest struct {
	PseudonymousID     string                   `json:"pseudonymousId"`
	QRData             usecase.AnonymousQRData  `json:"qrData"`
	Timestamp          time.Time                `json:"timestamp,omitempty"`
	Geolocation        *model.Geolocation       `json:"geolocation,omitempty"`
	SessionFingerprint string                   `json:"sessionFingerprint,omitempty"`
}

type errorBody struct {
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorBody{Kind: kind, Message: message})
}

// writeUseCaseError maps domain errors to HTTP responses. Conflict and
// location errors carry structured details the scanning client renders.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, errorBody{
			Kind:    "already_participated",
			Message: "you have already participated in this event",
			Details: map[string]interface{}{
				"eventTitle":   conflict.EventTitle,
				"timestamp":    conflict.OccurredAt,
				"rewardAmount": conflict.RewardAmount,
			},
		})
		return
	}
	var locErr *domain.LocationError
	if errors.As(err, &locErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Kind:    "too_far_from_event",
			Message: fmt.Sprintf("you are %.0f m from the event location (limit %.0f m)", locErr.DistanceMeters, locErr.MaxMeters),
			Details: map[string]interface{}{
				"distanceMeters": locErr.DistanceMeters,
				"maxMeters":      locErr.MaxMeters,
			},
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrInvalidQR):
		writeError(w, http.StatusBadRequest, "invalid_qr", "QR payload could not be decoded")
	case errors.Is(err, domain.ErrInvalidPseudonym):
		writeError(w, http.StatusBadRequest, "invalid_pseudonym", "pseudonymousId must be a UUIDv4")
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event_not_found", "event does not exist")
	case errors.Is(err, domain.ErrQRNotFoundOrExpired):
		writeError(w, http.StatusNotFound, "qr_not_found_or_expired", "no active QR code for this event and type")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "unable to record activity, please try again later")
	}
}

// verifyHandler serves the authenticated scan endpoint.
func verifyHandler(uc usecase.VerificationUseCase, auth *AuthManager, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := auth.CallerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		ctx := logging.WithUserID(r.Context(), caller.UserID)

		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
			return
		}
		if len(req.QRData) == 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "qrData is required")
			return
		}

		res, err := uc.Verify(ctx, caller, usecase.VerifyInput{
			RawQR:       req.QRData,
			Quantity:    req.Quantity,
			Notes:       req.Notes,
			Geolocation: req.Geolocation,
		})
		if err != nil {
			var dispatchErr *domain.DispatchError
			if errors.As(err, &dispatchErr) && res != nil {
				// Both dispatch paths failed after the activity committed.
				// The participation stays recorded; the reward needs
				// manual reconciliation.
				writeJSON(w, http.StatusInternalServerError, errorBody{
					Kind:    "dispatch_failed",
					Message: "participation recorded, reward dispatch failed and is pending manual reconciliation",
					Details: map[string]interface{}{
						"activity": res.Activity,
						"event":    res.Event,
					},
				})
				return
			}
			writeUseCaseError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"activity": res.Activity,
			"event":    res.Event,
			"reward":   res.Reward,
		})
	}
}

// anonymousHandler serves pseudonymous scans. No authentication: the
// identity is the client-generated UUID and rewards go to the
// nonprofit wallet.
func anonymousHandler(uc usecase.VerificationUseCase, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req anonymousRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
			return
		}
		// Request logs carry the redacted pseudonym, never the full one.
		ctx := logging.WithUserID(r.Context(), logging.Redact(req.PseudonymousID, false))

		res, err := uc.VerifyAnonymous(ctx, usecase.AnonymousInput{
			PseudonymousID:     req.PseudonymousID,
			QRData:             req.QRData,
			Timestamp:          req.Timestamp,
			Geolocation:        req.Geolocation,
			SessionFingerprint: req.SessionFingerprint,
			IPAddress:          clientIP(r),
			UserAgent:          r.UserAgent(),
		})
		if err != nil {
			var dispatchErr *domain.DispatchError
			if !errors.As(err, &dispatchErr) || res == nil {
				writeUseCaseError(w, err)
				return
			}
			// Recorded but unrewarded; fall through to the success body.
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"message":  "thank you for your participation, your impact has been recorded",
			"activity": res.Activity,
			"event":    res.Event,
			"reward":   res.Reward,
			"impact": map[string]interface{}{
				"quantity":     res.Activity.Quantity,
				"rewardAmount": res.Activity.RewardAmount,
			},
		})
	}
}

// traceHandler lists a pseudonym's activities for abuse investigation.
// The stored IP is partially redacted even for operators.
func traceHandler(uc usecase.VerificationUseCase, logger *zerolog.Logger) http.HandlerFunc {
	type tracedActivity struct {
		*model.PseudonymousActivity
		IPAddress string `json:"ipAddress"`
		UserAgent string `json:"userAgent"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		pid := chi.URLParam(r, "pseudonymousId")
		list, err := uc.TraceByPseudonym(r.Context(), pid)
		if err != nil {
			writeUseCaseError(w, err)
			return
		}
		out := make([]tracedActivity, 0, len(list))
		var totalRewards float64
		for _, a := range list {
			out = append(out, tracedActivity{
				PseudonymousActivity: a,
				IPAddress:            logging.RedactIP(a.IPAddress),
				UserAgent:            a.UserAgent,
			})
			totalRewards += a.RewardAmount
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"pseudonymousId":  pid,
			"activities":      out,
			"totalActivities": len(out),
			"totalRewards":    totalRewards,
		})
	}
}

// statsHandler serves public aggregate stats over the pseudonymous ledger.
func statsHandler(uc usecase.VerificationUseCase, nonprofitWallet string, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := uc.AnonymousStats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "failed to fetch statistics")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"stats": map[string]interface{}{
				"totalActivities":         stats.TotalActivities,
				"totalRewardsDistributed": stats.TotalRewardsDistributed,
				"uniqueParticipants":      stats.UniqueParticipants,
				"nonprofitWallet":         nonprofitWallet,
			},
		})
	}
}
