/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Logger is the logging contract resolved from the registry.
type Logger interface {
	Info(message string)
}

// Configuration is the configuration contract resolved from the registry.
type Configuration interface {
	Load() error
}

type consoleLogger struct {
	w io.Writer
}

func newConsoleLogger(w io.Writer) *consoleLogger { return &consoleLogger{w: w} }

func (l *consoleLogger) Info(message string) { fmt.Fprintln(l.w, message) }

// Close is called by the registry when it releases the logger.
func (l *consoleLogger) Close() error {
	_, err := fmt.Fprintln(l.w, "logger released")
	return err
}

var configSeq atomic.Int64

type fileConfiguration struct {
	w   io.Writer
	seq int64
}

func newFileConfiguration(w io.Writer) *fileConfiguration {
	return &fileConfiguration{w: w, seq: configSeq.Add(1)}
}

func (c *fileConfiguration) Load() error {
	_, err := fmt.Fprintln(c.w, "Loading configuration")
	return err
}
