// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package refinput is the built-in reference input host. It serves synthetic
// tuner, HDMI passthrough and recording inputs declared in the configuration and
// doubles as the upstream manager for hardware inputs.
package refinput

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/config"
	"github.com/ManuGH/tvinput/internal/domain/session/actor"
	"github.com/ManuGH/tvinput/internal/domain/session/manager"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

var (
	_ manager.Host             = (*Host)(nil)
	_ manager.RecordingHost    = (*Host)(nil)
	_ manager.HardwareResolver = (*Host)(nil)
	_ manager.HdmiResolver     = (*Host)(nil)
	_ ports.InputManager       = (*Host)(nil)
)

// Host implements every host-side collaborator of the dispatcher.
type Host struct {
	inputs map[string]config.InputConfig
	now    func() time.Time
	logger zerolog.Logger

	mu       sync.Mutex
	hardware map[string]model.InputInfo
	ports    map[int]string
	nested   map[model.Handle]*hardwareSession
}

// New builds a host serving the configured reference inputs.
func New(cfg config.ReferenceConfig) *Host {
	inputs := make(map[string]config.InputConfig, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		inputs[in.ID] = in
	}
	return &Host{
		inputs:   inputs,
		now:      time.Now,
		logger:   log.WithComponent("refinput"),
		hardware: make(map[string]model.InputInfo),
		ports:    make(map[int]string),
		nested:   make(map[model.Handle]*hardwareSession),
	}
}

// Inputs lists the reference inputs followed by the known hardware inputs.
func (h *Host) Inputs() []model.InputInfo {
	out := make([]model.InputInfo, 0, len(h.inputs))
	for _, in := range h.inputs {
		out = append(out, inputInfo(in))
	}
	h.mu.Lock()
	for _, info := range h.hardware {
		out = append(out, info)
	}
	h.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func inputInfo(in config.InputConfig) model.InputInfo {
	t := model.InputType(in.Type)
	if t == "" {
		t = model.InputTypeTuner
	}
	return model.InputInfo{ID: in.ID, Label: in.Label, Type: t, ParentID: in.HardwareInput}
}

func (h *Host) sessionLogger(inputID string, s interface{ Handle() model.Handle }) zerolog.Logger {
	return h.logger.With().
		Str(log.FieldInputID, inputID).
		Str(log.FieldSessionID, s.Handle().String()).
		Logger()
}

// OnCreateSession returns a tuner or passthrough implementation, or nil for
// unknown inputs.
func (h *Host) OnCreateSession(_ context.Context, inputID string, s *actor.Session) actor.Hooks {
	in, ok := h.inputs[inputID]
	if !ok {
		h.logger.Warn().Str(log.FieldInputID, inputID).Msg("no reference input with this id")
		return nil
	}
	logger := h.sessionLogger(inputID, s)
	if in.HardwareInput != "" {
		return &passthroughSession{s: s, hwID: in.HardwareInput, logger: logger}
	}
	tuner := &tunerSession{s: s, logger: logger, volume: 1}
	if in.TimeShift {
		return &timeShiftSession{tunerSession: tuner, buf: newTimeShiftBuffer(h.now)}
	}
	return tuner
}

// OnCreateRecordingSession returns a recorder for inputs that allow recording.
func (h *Host) OnCreateRecordingSession(_ context.Context, inputID string, r *actor.Recording) actor.RecordingHooks {
	in, ok := h.inputs[inputID]
	if !ok || !in.Recording {
		h.logger.Warn().Str(log.FieldInputID, inputID).Msg("input does not support recording")
		return nil
	}
	return &recorder{r: r, inputID: inputID, logger: h.sessionLogger(inputID, r)}
}
