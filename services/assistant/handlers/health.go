// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ParagrafAI/ParagrafLocal/services/llm"
)

// HealthCheck reports gateway liveness plus the current view of the local
// model backend. The probe result is cached, so this endpoint stays cheap
// under scrapes.
func HealthCheck(prober *llm.Prober) gin.HandlerFunc {
	return func(c *gin.Context) {
		local := "unavailable"
		if prober != nil && prober.IsUp(c.Request.Context()) {
			local = "ok"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"local_backend": local,
		})
	}
}
