// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const badgerMetricNamePrefix = "database_blob_"

// registerBlobMetrics exposes the badger expvar counters through prometheus
func (d *BlobStoreBadger) registerBlobMetrics() {
	expvarMetrics := map[string]string{
		"badger_get_num_user":               "Number of gets",
		"badger_put_num_user":               "Number of puts",
		"badger_iterator_num_user":          "Number of iterators created",
		"badger_read_bytes_lsm":             "Bytes read from the LSM tree",
		"badger_read_num_vlog":              "Number of value log reads",
		"badger_write_num_vlog":             "Number of value log writes",
		"badger_read_bytes_vlog":            "Bytes read from the value log",
		"badger_write_bytes_vlog":           "Bytes written to the value log",
		"badger_compaction_current_num_lsm": "Number of running compactions",
	}
	descs := make(map[string]*prometheus.Desc, len(expvarMetrics))
	for name, help := range expvarMetrics {
		descs[name] = prometheus.NewDesc(
			badgerMetricNamePrefix+name[len("badger_"):],
			help,
			nil,
			nil,
		)
	}
	collector := collectors.NewExpvarCollector(descs)
	if err := d.promRegistry.Register(collector); err != nil {
		// Badger counters are process-wide, so another store may have
		// registered them already
		var alreadyErr prometheus.AlreadyRegisteredError
		if !errors.As(err, &alreadyErr) {
			d.logger.Warn(
				"failed to register blob metrics",
				"component", "database",
				"error", err,
			)
		}
	}
}
