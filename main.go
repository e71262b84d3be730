// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Mpform parses multipart/form-data contents, from command line or through its web interface.

package main

import (
	"github.com/hexinfra/mpform/hemi/procman"
)

func main() {
	procman.Main(&procman.Opts{
		ProgramName:  "mpform",
		ProgramTitle: "Mpform",
		DebugLevel:   0,
		WebUIAddr:    "127.0.0.1:9528",
	})
}
