package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/btcsuite/btclog"
	"github.com/pmaddams/blockattack/attack"
	"github.com/pmaddams/blockattack/oracle"
)

// Loggers per subsystem.  A single backend logger is created and all
// subsystem loggers created from it will write to the backend.  When adding
// new subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = btclog.NewBackend(os.Stderr)

	mainLog = backendLog.Logger("BATK")
	atckLog = backendLog.Logger("ATCK")
	orclLog = backendLog.Logger("ORCL")
)

// Initialize package-global logger variables.
func init() {
	attack.UseLogger(atckLog)
	oracle.UseLogger(orclLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"BATK": mainLog,
	"ATCK": atckLog,
	"ORCL": orclLog,
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string) error {
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		return fmt.Errorf("invalid debug level %q", logLevel)
	}
	for _, subsysID := range supportedSubsystems() {
		subsystemLoggers[subsysID].SetLevel(level)
	}
	return nil
}
