// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hushdisk/hushd/internal/constants"
	"github.com/hushdisk/hushd/pkg/errors"
	"github.com/hushdisk/hushd/pkg/monitor"
)

type diskStatus struct {
	Name        string `json:"name"`
	IdleSeconds int64  `json:"idleSeconds"`
	LastIO      string `json:"lastIO"`
	SpunDown    bool   `json:"spunDown"`
	SpindownAt  string `json:"spindownAt,omitempty"`
	SpinupAt    string `json:"spinupAt,omitempty"`
	Reads       uint64 `json:"reads"`
	Writes      uint64 `json:"writes"`
}

type policyStatus struct {
	Rules               []monitor.Rule `json:"rules"`
	PollIntervalSeconds int64          `json:"pollIntervalSeconds"`
}

func registerRoutes(engine *gin.Engine, mon *monitor.Monitor) {
	api := engine.Group(constants.APIBase)

	api.GET("/disks", func(c *gin.Context) {
		disks := mon.Tracker().Snapshot()
		out := make([]diskStatus, 0, len(disks))
		for _, d := range disks {
			out = append(out, toDiskStatus(d))
		}
		c.JSON(http.StatusOK, out)
	})

	api.GET("/disks/:name", func(c *gin.Context) {
		d, ok := mon.Tracker().Lookup(c.Param("name"))
		if !ok {
			he := errors.New(errors.MonitorDiskNotTracked, c.Param("name"))
			c.Error(he)
			c.JSON(he.HTTPStatus, he)
			return
		}
		c.JSON(http.StatusOK, toDiskStatus(d))
	})

	api.POST("/disks/:name/spindown", func(c *gin.Context) {
		name := c.Param("name")
		err := mon.Tracker().ForceSpinDown(c.Request.Context(), name, time.Now())
		if err != nil {
			status := http.StatusInternalServerError
			if he, ok := errors.AsHushError(err); ok {
				status = he.HTTPStatus
			}
			c.Error(err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"disk": name, "spunDown": true})
	})

	api.GET("/policy", func(c *gin.Context) {
		c.JSON(http.StatusOK, policyStatus{
			Rules:               mon.Policy().Rules(),
			PollIntervalSeconds: int64(mon.Interval().Seconds()),
		})
	})
}

func toDiskStatus(d monitor.TrackedDisk) diskStatus {
	s := diskStatus{
		Name:        d.Name,
		IdleSeconds: int64(d.Idle.Seconds()),
		LastIO:      d.LastIO.Format(time.RFC3339),
		SpunDown:    d.SpunDown,
		Reads:       d.Reads,
		Writes:      d.Writes,
	}
	if !d.SpindownAt.IsZero() {
		s.SpindownAt = d.SpindownAt.Format(time.RFC3339)
	}
	if !d.SpinupAt.IsZero() {
		s.SpinupAt = d.SpinupAt.Format(time.RFC3339)
	}
	return s
}
