// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Basic elements shared by the parser, the web interface and the program.

package hemi

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/juju/loggo/v2"
)

const Version = "0.1.0"

var _debugLevel atomic.Int32

func DebugLevel() int32 { return _debugLevel.Load() }

// SetDebugLevel sets debug level and the level of mpform loggers accordingly. 0 means disable, max is 2.
func SetDebugLevel(level int32) {
	_debugLevel.Store(level)
	loggo.GetLogger(loggerRoot).SetLogLevel(levelOf(level))
}

const ( // exit codes
	CodeBug = 20
	CodeUse = 21
	CodeEnv = 22
)

func BugExitln(v ...any) { _exitln(CodeBug, v...) }
func UseExitln(v ...any) { _exitln(CodeUse, v...) }
func EnvExitln(v ...any) { _exitln(CodeEnv, v...) }

// ExitPrefix returns the prefix printed by the exit helpers for exitCode, or "" if there is none.
func ExitPrefix(exitCode int) string {
	switch exitCode {
	case CodeBug:
		return "[BUG] "
	case CodeUse:
		return "[USE] "
	case CodeEnv:
		return "[ENV] "
	}
	return ""
}

func _exitln(exitCode int, v ...any) {
	fmt.Fprint(os.Stderr, ExitPrefix(exitCode))
	fmt.Fprintln(os.Stderr, v...)
	os.Exit(exitCode)
}
