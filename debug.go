// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

//go:build debug
// +build debug

package sweepdd

import (
	"os"

	"github.com/sirupsen/logrus"
)

const _DEBUG bool = true
const _LOGLEVEL int = 1

// ******************************************************************************************************

func init() {
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.DebugLevel)
}

// ******************************************************************************************************

// logLevel dumps the requests of the level being closed when _LOGLEVEL > 1.
func (sw *productSweep) logLevel(label Label, width ID) {
	entry := sw.log.WithFields(logrus.Fields{
		"label":     label,
		"width":     width,
		"pq1":       sw.pq1.Len(),
		"pq2":       sw.pq2.Len(),
		"requests":  sw.stats.Requests,
		"forwarded": sw.stats.Forwarded,
	})
	if _LOGLEVEL > 1 {
		entry.Trace("level closed")
		return
	}
	entry.Debug("level closed")
}
