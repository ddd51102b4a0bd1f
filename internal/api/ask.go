package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/fleetmon/fleetmon/internal/auth"
	"github.com/fleetmon/fleetmon/internal/config"
	"github.com/fleetmon/fleetmon/internal/nlq"
)

type askRequest struct {
	Query string `json:"query"`
}

func handleAsk(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Ask == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "natural-language queries are not enabled", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}

	question := strings.TrimSpace(request.Query)
	length := utf8.RuneCountInString(question)
	if length < cfg.Ask.MinQuestionChars || length > cfg.Ask.MaxQuestionChars {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_QUESTION",
			fmt.Sprintf("query must be %d to %d characters", cfg.Ask.MinQuestionChars, cfg.Ask.MaxQuestionChars), false, nil)
		return
	}

	response, err := deps.Ask.Ask(r.Context(), question)
	if err != nil {
		if nlq.IsRejection(err) {
			writeError(r.Context(), w, http.StatusBadRequest, "QUERY_REJECTED", err.Error(), false, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "QUERY_FAILED", "query processing failed", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

type exampleGroup struct {
	Category string   `json:"category"`
	Queries  []string `json:"queries"`
}

var askExamples = []exampleGroup{
	{
		Category: "Device Queries",
		Queries: []string{
			"Show all devices",
			"List active devices",
			"Show devices in Server Room",
		},
	},
	{
		Category: "Temperature Queries",
		Queries: []string{
			"Devices with temperature above 80",
			"Show critical temperature readings",
			"What's the highest temperature recorded?",
		},
	},
	{
		Category: "Battery Queries",
		Queries: []string{
			"Show devices with low battery",
			"What's the average battery level?",
			"Devices with battery below 20%",
		},
	},
	{
		Category: "Aggregation Queries",
		Queries: []string{
			"Average temperature per device",
			"Count devices by location",
			"Show humidity statistics",
		},
	},
	{
		Category: "Time-Based Queries",
		Queries: []string{
			"Show readings from today",
			"Recent high temperature alerts",
			"Latest reading for each device",
		},
	},
}

func handleAskExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"examples": askExamples})
}
