package runtime

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/lexcodex/hivemind/capabilities"
	"github.com/lexcodex/hivemind/hive"
	"github.com/lexcodex/hivemind/llm"
	"github.com/lexcodex/hivemind/persistence"
)

// Runtime owns the shared infrastructure of a hivectl process: one message
// bus, one capability registry, one agent registry, one mission store, and
// an orchestrator per configured agent id.
type Runtime struct {
	Config        Config
	Bus           *hive.MessageBus
	Capabilities  *hive.CapabilityRegistry
	Agents        *hive.AgentRegistry
	Store         hive.MissionStore
	Telemetry     hive.Telemetry
	Orchestrators map[string]*hive.Orchestrator

	closers []io.Closer
}

// New wires a runtime from the config. Feedback is the human escalation
// gate shared by every orchestrator; pass nil for headless runs.
func New(cfg Config, feedback hive.FeedbackGate) (*Runtime, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:        cfg,
		Bus:           hive.NewMessageBus(),
		Capabilities:  hive.NewCapabilityRegistry(),
		Agents:        hive.NewAgentRegistry(),
		Orchestrators: make(map[string]*hive.Orchestrator, len(cfg.Agents)),
	}
	capabilities.Install(rt.Capabilities)

	store, err := rt.openStore()
	if err != nil {
		return nil, err
	}
	rt.Store = store

	telemetry, err := rt.openTelemetry()
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Telemetry = telemetry

	client := llm.NewClient(cfg.OracleBaseURL, cfg.OracleModel, cfg.APIKey)
	client.Referer = cfg.Referer
	planner := llm.NewOraclePlanner(client)
	reflector := llm.NewOracleReflector(client)

	for _, id := range cfg.Agents {
		orch := hive.NewOrchestrator(id, hive.OrchestratorOptions{
			Planner:      planner,
			Reflector:    reflector,
			Capabilities: rt.Capabilities,
			Agents:       rt.Agents,
			Bus:          rt.Bus,
			Store:        rt.Store,
			Feedback:     feedback,
			Telemetry:    rt.Telemetry,
			TaskRoutes:   cfg.TaskRoutes,
		})
		rt.Agents.Register(id, orch)
		rt.Orchestrators[id] = orch
	}
	return rt, nil
}

// Orchestrator returns the orchestrator for an agent id, defaulting to the
// first configured agent when id is empty.
func (rt *Runtime) Orchestrator(id string) (*hive.Orchestrator, error) {
	if id == "" {
		id = rt.Config.Agents[0]
	}
	orch, ok := rt.Orchestrators[id]
	if !ok {
		return nil, fmt.Errorf("no agent named %q (have %v)", id, rt.Config.Agents)
	}
	return orch, nil
}

// Close releases store and telemetry handles.
func (rt *Runtime) Close() {
	for _, closer := range rt.closers {
		_ = closer.Close()
	}
	rt.closers = nil
}

func (rt *Runtime) openStore() (hive.MissionStore, error) {
	switch rt.Config.Store {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(rt.Config.StorePath), 0o755); err != nil {
			return nil, err
		}
		store, err := persistence.NewSQLiteMissionStore(rt.Config.StorePath)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, store)
		return store, nil
	default:
		return persistence.NewFileMissionStore(rt.Config.StorePath)
	}
}

func (rt *Runtime) openTelemetry() (hive.Telemetry, error) {
	sinks := []hive.Telemetry{hive.LoggerTelemetry{Logger: log.New(os.Stderr, "hive ", log.LstdFlags)}}
	if rt.Config.TelemetryPath != "" {
		if err := os.MkdirAll(filepath.Dir(rt.Config.TelemetryPath), 0o755); err != nil {
			return nil, err
		}
		fileSink, err := hive.NewJSONFileTelemetry(rt.Config.TelemetryPath)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, fileSink)
		sinks = append(sinks, fileSink)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return hive.MultiplexTelemetry{Sinks: sinks}, nil
}
