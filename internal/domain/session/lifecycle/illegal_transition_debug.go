// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build debug

package lifecycle

import "fmt"

func illegalTransition(from Phase, ev EventKind) error {
	panic(fmt.Sprintf("illegal transition: %s + %s", from, ev))
}
