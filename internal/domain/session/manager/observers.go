// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/metrics"
	"github.com/ManuGH/tvinput/internal/telemetry"
)

// RegisterObserver adds o to the topology broadcast list. Registering the same
// observer twice has no effect.
func (s *Service) RegisterObserver(o ports.ServiceObserver) {
	if o == nil {
		return
	}
	s.postControl("register_observer", func(context.Context) {
		for _, existing := range s.observers {
			if existing == o {
				return
			}
		}
		s.observers = append(s.observers, o)
		s.logger.Debug().Str(log.FieldObserver, observerName(o)).Int("observers", len(s.observers)).Msg("observer registered")
	})
}

func (s *Service) UnregisterObserver(o ports.ServiceObserver) {
	if o == nil {
		return
	}
	s.postControl("unregister_observer", func(context.Context) {
		for i, existing := range s.observers {
			if existing == o {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				s.logger.Debug().Str(log.FieldObserver, observerName(o)).Int("observers", len(s.observers)).Msg("observer unregistered")
				return
			}
		}
	})
}

// ObserverCount returns the number of registered observers.
func (s *Service) ObserverCount(ctx context.Context) (int, error) {
	n := 0
	err := s.control.Call(ctx, func(context.Context) { n = len(s.observers) })
	return n, err
}

// NotifyHardwareAdded asks the hardware resolver for an input backed by info and
// broadcasts it.
func (s *Service) NotifyHardwareAdded(info model.HardwareInfo) {
	s.postControl("hardware_added", func(ctx context.Context) {
		if s.cfg.Hardware == nil {
			return
		}
		input, ok := s.cfg.Hardware.OnHardwareAdded(ctx, info)
		if !ok {
			return
		}
		s.broadcast(ctx, model.TopologyHardwareAdded, info.DeviceID, input.ID, func(o ports.ServiceObserver) error {
			return o.AddHardwareInput(info.DeviceID, input)
		})
	})
}

func (s *Service) NotifyHardwareRemoved(info model.HardwareInfo) {
	s.postControl("hardware_removed", func(ctx context.Context) {
		if s.cfg.Hardware == nil {
			return
		}
		inputID, ok := s.cfg.Hardware.OnHardwareRemoved(ctx, info)
		if !ok {
			return
		}
		s.broadcast(ctx, model.TopologyHardwareRemoved, info.DeviceID, inputID, func(o ports.ServiceObserver) error {
			return o.RemoveHardwareInput(inputID)
		})
	})
}

func (s *Service) NotifyHdmiDeviceAdded(info model.HdmiDeviceInfo) {
	s.postControl("hdmi_added", func(ctx context.Context) {
		if s.cfg.Hdmi == nil {
			return
		}
		input, ok := s.cfg.Hdmi.OnHdmiDeviceAdded(ctx, info)
		if !ok {
			return
		}
		s.broadcast(ctx, model.TopologyHdmiAdded, info.ID, input.ID, func(o ports.ServiceObserver) error {
			return o.AddHdmiInput(info.ID, input)
		})
	})
}

func (s *Service) NotifyHdmiDeviceRemoved(info model.HdmiDeviceInfo) {
	s.postControl("hdmi_removed", func(ctx context.Context) {
		if s.cfg.Hdmi == nil {
			return
		}
		inputID, ok := s.cfg.Hdmi.OnHdmiDeviceRemoved(ctx, info)
		if !ok {
			return
		}
		s.broadcast(ctx, model.TopologyHdmiRemoved, info.ID, inputID, func(o ports.ServiceObserver) error {
			return o.RemoveHdmiInput(inputID)
		})
	})
}

// broadcast delivers one topology change to every observer. A failing or
// panicking observer does not stop delivery to the rest.
func (s *Service) broadcast(ctx context.Context, change model.TopologyChange, id int, inputID string, deliver func(ports.ServiceObserver) error) {
	ctx, span := s.tracer.Start(ctx, "topology.broadcast")
	defer span.End()
	snapshot := append([]ports.ServiceObserver(nil), s.observers...)
	failures := 0
	for _, o := range snapshot {
		if err := deliverSafely(o, deliver); err != nil {
			failures++
			metrics.IncObserverBroadcastFailure(string(change))
			s.logger.Warn().
				Err(err).
				Str(log.FieldEvent, "topology.delivery_failed").
				Str(log.FieldObserver, observerName(o)).
				Str("change", string(change)).
				Str(log.FieldInputID, inputID).
				Msg("observer broadcast failed")
		}
	}
	span.SetAttributes(telemetry.TopologyAttributes(string(change), failures)...)
	s.logger.Info().
		Str(log.FieldEvent, "topology.changed").
		Str("change", string(change)).
		Int(log.FieldDeviceID, id).
		Str(log.FieldInputID, inputID).
		Int("observers", len(snapshot)).
		Int("failures", failures).
		Msg("topology change broadcast")
	s.publish(ctx, model.EventTopology, model.TopologyEvent{
		Change:    change,
		ID:        id,
		InputID:   inputID,
		Observers: len(snapshot),
		Failures:  failures,
		At:        time.Now(),
	})
}

func deliverSafely(o ports.ServiceObserver, deliver func(ports.ServiceObserver) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return deliver(o)
}

func observerName(o ports.ServiceObserver) string {
	if n, ok := o.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", o)
}
