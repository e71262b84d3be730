// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Loggers log events.

package hemi

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

const loggerRoot = "mpform"

// debugLevels maps debug level to the level of mpform loggers.
var debugLevels = [...]loggo.Level{
	0: loggo.WARNING,
	1: loggo.DEBUG,
	2: loggo.TRACE,
}

func levelOf(debugLevel int32) loggo.Level {
	if debugLevel < 0 {
		debugLevel = 0
	} else if debugLevel >= int32(len(debugLevels)) {
		debugLevel = int32(len(debugLevels) - 1)
	}
	return debugLevels[debugLevel]
}

// configureLoggers applies logging (like "<root>=INFO;mpform.hemiweb=DEBUG") if any.
func configureLoggers(logging string) error {
	if logging == "" {
		return nil
	}
	if err := loggo.ConfigureLoggers(logging); err != nil {
		return errors.Annotatef(err, "bad logging config %q", logging)
	}
	return nil
}

// GetLogger returns a logger under the mpform root, like "mpform.hemiweb".
func GetLogger(name string) loggo.Logger {
	return loggo.GetLogger(loggerRoot + "." + name)
}
