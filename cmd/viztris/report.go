package main

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/viztris/ecs"
	"github.com/plus3/viztris/input"
	"github.com/plus3/viztris/session"
)

// Report summarises one game. It is printed after the terminal is restored.
type Report struct {
	Session  string
	Seed     uint64
	Started  time.Time
	Duration time.Duration
	Outcome  string

	Score  session.Score
	Locked int

	WakeUps   map[string]int64
	Commands  map[string]int64
	Telemetry int64
	FrameTime Stats

	Scheduler     *ecs.SchedulerStats
	Storage       *ecs.StorageStats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

// Stats summarises a series of durations without keeping them.
type Stats struct {
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

func (s *Stats) Add(sample time.Duration) {
	if s.Count == 0 || sample < s.Min {
		s.Min = sample
	}
	s.Max = max(s.Max, sample)
	s.Total += sample
	s.Count++
}

func (s *Stats) Finalize() {
	if s.Count == 0 {
		return
	}
	s.Avg = s.Total / time.Duration(s.Count)
}

func newReport(sessionID string, seed uint64, started time.Time) *Report {
	r := &Report{
		Session:  sessionID,
		Seed:     seed,
		Started:  started,
		WakeUps:  make(map[string]int64),
		Commands: make(map[string]int64),
	}
	runtime.ReadMemStats(&r.MemStatsStart)
	return r
}

// Record counts one multiplexer event and the time spent applying it.
func (r *Report) Record(ev input.Event, applied time.Duration) {
	r.WakeUps[ev.Status.String()]++
	if ev.Command != session.CommandNone {
		r.Commands[ev.Command.String()]++
	}
	if ev.HasTelemetry {
		r.Telemetry++
	}
	r.FrameTime.Add(applied)
}

// Finish captures the final state of game.
func (r *Report) Finish(game *session.Session, outcome string, ended time.Time) {
	r.Outcome = outcome
	r.Duration = ended.Sub(r.Started)
	r.Score = game.Score()
	r.Locked = game.Locked()
	r.Scheduler = game.Stats()
	r.Storage = game.StorageStats()
	r.FrameTime.Finalize()
	runtime.ReadMemStats(&r.MemStatsEnd)
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# viztris

## Session
- **Id:** {{.Session}}
- **Seed:** {{.Seed}}
- **Outcome:** {{.Outcome}}
- **Played:** {{.Duration | round}}

## Score
- **Lines completed:** {{.Score.Lines}}
- **Level:** {{.Score.Level}}
- **Score:** {{.Score.Points}}
- **Pieces locked:** {{.Locked}}
- **Final fall delay:** {{.Score.FallDelay}}

## Input
{{range $status, $count := .WakeUps}}- {{$status}}: {{$count}}
{{end}}{{if .Commands}}
Commands:
{{range $cmd, $count := .Commands}}- {{$cmd}}: {{$count}}
{{end}}{{end}}- Telemetry messages: {{.Telemetry}}
{{if .Scheduler}}
## Systems ({{.Scheduler.Frames}} frames)
{{range .Scheduler.Systems}}- **{{.Name}}:** avg {{.AvgDuration}}, min {{.MinDuration}}, max {{.MaxDuration}}
{{end}}- **Frame time ({{.FrameTime.Count}} frames):** avg {{.FrameTime.Avg}}, min {{.FrameTime.Min}}, max {{.FrameTime.Max}}
{{end}}{{if .Storage}}- **Entities:** {{.Storage.EntityCount}}, singletons: {{.Storage.SingletonCount}}
{{end}}
## Memory (Raw Bytes)
- Total Alloc: {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:      {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"round": func(d time.Duration) time.Duration {
			return d.Round(time.Second)
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
