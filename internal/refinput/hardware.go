// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package refinput

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

// HardwareInputID names the input backing a hardware device.
func HardwareInputID(deviceID int) string { return fmt.Sprintf("hw-%d", deviceID) }

// HdmiInputID names the input backing a logical HDMI device.
func HdmiInputID(id int) string { return fmt.Sprintf("hdmi-%d", id) }

func (h *Host) OnHardwareAdded(_ context.Context, info model.HardwareInfo) (model.InputInfo, bool) {
	if info.DeviceID < 0 {
		return model.InputInfo{}, false
	}
	input := model.InputInfo{
		ID:          HardwareInputID(info.DeviceID),
		Label:       fmt.Sprintf("%s %d", info.Type, info.DeviceID),
		Type:        info.Type,
		Passthrough: true,
	}
	h.mu.Lock()
	h.hardware[input.ID] = input
	if info.Type == model.InputTypeHDMI {
		h.ports[info.HDMIPort] = input.ID
	}
	h.mu.Unlock()
	return input, true
}

// OnHardwareRemoved forgets the input and reports loss of video to nested
// sessions still open on it.
func (h *Host) OnHardwareRemoved(_ context.Context, info model.HardwareInfo) (string, bool) {
	id := HardwareInputID(info.DeviceID)
	h.mu.Lock()
	_, ok := h.hardware[id]
	delete(h.hardware, id)
	if info.Type == model.InputTypeHDMI && h.ports[info.HDMIPort] == id {
		delete(h.ports, info.HDMIPort)
	}
	orphans := h.nestedOnLocked(id)
	h.mu.Unlock()

	for _, n := range orphans {
		n.events.OnVideoUnavailable(n, model.VideoUnavailableUnknown)
	}
	return id, ok
}

// OnHdmiDeviceAdded exposes a logical HDMI device as a passthrough input whose
// parent is the hardware input on the same port.
func (h *Host) OnHdmiDeviceAdded(_ context.Context, info model.HdmiDeviceInfo) (model.InputInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	input := model.InputInfo{
		ID:          HdmiInputID(info.ID),
		Label:       info.DisplayName,
		Type:        model.InputTypeHDMI,
		Passthrough: true,
		ParentID:    h.ports[info.PortID],
	}
	h.hardware[input.ID] = input
	return input, true
}

func (h *Host) OnHdmiDeviceRemoved(_ context.Context, info model.HdmiDeviceInfo) (string, bool) {
	id := HdmiInputID(info.ID)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.hardware[id]
	delete(h.hardware, id)
	return id, ok
}

// InputInfo looks up hardware inputs for passthrough creation.
func (h *Host) InputInfo(_ context.Context, inputID string) (model.InputInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	info, ok := h.hardware[inputID]
	return info, ok
}

// CreateSession opens a nested session on a hardware input.
func (h *Host) CreateSession(ctx context.Context, inputID string, events ports.HardwareSessionEvents) (ports.HardwareSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		return nil, ErrNoEvents
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.hardware[inputID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHardwareInput, inputID)
	}
	n := &hardwareSession{
		token:   model.NewHandle(),
		inputID: inputID,
		events:  events,
		host:    h,
	}
	h.nested[n.token] = n
	h.logger.Debug().
		Str(log.FieldHardwareInputID, inputID).
		Str(log.FieldHardwareSession, n.token.String()).
		Msg("hardware session opened")
	return n, nil
}

// NestedSessions returns the number of open hardware sessions.
func (h *Host) NestedSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.nested)
}

func (h *Host) nestedOnLocked(inputID string) []*hardwareSession {
	var out []*hardwareSession
	for _, n := range h.nested {
		if n.inputID == inputID {
			out = append(out, n)
		}
	}
	return out
}

func (h *Host) hardwarePresent(inputID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.hardware[inputID]
	return ok
}

func (h *Host) closeNested(token model.Handle) {
	h.mu.Lock()
	delete(h.nested, token)
	h.mu.Unlock()
}

type hardwareSession struct {
	token    model.Handle
	inputID  string
	events   ports.HardwareSessionEvents
	host     *Host
	released atomic.Bool
}

func (n *hardwareSession) Token() model.Handle { return n.token }

// Tune accepts only the passthrough channel of its own input.
func (n *hardwareSession) Tune(channelURI string, _ model.Bundle) {
	if n.released.Load() {
		return
	}
	id, ok := model.PassthroughInputID(channelURI)
	switch {
	case !ok || id != n.inputID:
		n.events.OnVideoUnavailable(n, model.VideoUnavailableUnknown)
	case !n.host.hardwarePresent(n.inputID):
		n.events.OnVideoUnavailable(n, model.VideoUnavailableWeakSignal)
	default:
		n.events.OnVideoAvailable(n)
	}
}

func (n *hardwareSession) Release() {
	if n.released.Swap(true) {
		return
	}
	n.host.closeNested(n.token)
}
