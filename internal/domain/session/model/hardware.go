// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// InputType classifies an input source.
type InputType string

const (
	InputTypeTuner     InputType = "tuner"
	InputTypeHDMI      InputType = "hdmi"
	InputTypeComposite InputType = "composite"
	InputTypeOther     InputType = "other"
)

// InputInfo describes an input the manager can create sessions for.
type InputInfo struct {
	ID          string
	Label       string
	Type        InputType
	Passthrough bool
	ParentID    string
}

// HardwareInfo describes a hardware device reported to the service.
type HardwareInfo struct {
	DeviceID  int
	Type      InputType
	HDMIPort  int
	AudioType string
}

// HdmiDeviceInfo describes a logical HDMI device behind a port.
type HdmiDeviceInfo struct {
	ID          int
	LogicalAddr int
	PortID      int
	DisplayName string
}
