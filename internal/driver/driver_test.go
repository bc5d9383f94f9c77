package driver

import (
	"context"
	"reflect"
	"testing"

	"plume/internal/passes"
	"plume/internal/source"
)

const demoSrc = `
var x, y;
begin
    x := 5;
    y := x * 2;
    write y
end.
`

func compileSrc(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	fset := source.NewFileSet()
	id := fset.Add("demo.plm", []byte(src))
	res, err := Compile(context.Background(), fset, id, opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return res
}

func TestCompile_AllOutputsPresent(t *testing.T) {
	res := compileSrc(t, demoSrc, Options{})
	if !res.Success {
		t.Fatalf("expected success, diagnostics: %v", res.Bag.Items())
	}

	want := []string{
		passes.OutputC,
		passes.OutputInstrC,
		passes.OutputOptC,
		passes.OutputOptReport,
		passes.OutputPerfReport,
		passes.OutputPy,
		passes.OutputTAC,
	}
	if got := res.Context.OutputKeys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected outputs %v, got %v", want, got)
	}

	names := res.Context.ResultNames()
	if len(names) != 8 {
		t.Errorf("expected 8 plugin results, got %v", names)
	}
}

func TestCompile_OrderRespectsDependencies(t *testing.T) {
	res := compileSrc(t, demoSrc, Options{})
	pos := map[string]int{}
	for i, name := range res.Order {
		pos[name] = i
	}
	if pos[passes.AnalysisName] != 0 {
		t.Errorf("analysis must run first, order: %v", res.Order)
	}
	if pos[passes.PerfName] < pos[passes.CGenName] {
		t.Errorf("profiler must follow the C generator, order: %v", res.Order)
	}
}

func TestCompile_ParseErrorGatesPipeline(t *testing.T) {
	res := compileSrc(t, "begin x := end.", Options{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if !res.Bag.HasErrors() {
		t.Fatal("expected parse errors")
	}
	// Плагины не запускались: ни одного выхода и ни одного результата.
	if keys := res.Context.OutputKeys(); len(keys) != 0 {
		t.Errorf("pipeline ran over a broken tree: %v", keys)
	}
	if len(res.Order) != 0 {
		t.Errorf("no order should be resolved, got %v", res.Order)
	}
}

func TestCompile_DisabledPluginCascades(t *testing.T) {
	res := compileSrc(t, demoSrc, Options{Disabled: []string{passes.CGenName}})
	// Выключенный генератор тянет за собой профилировщик.
	if _, ok := res.Context.Output(passes.OutputC); ok {
		t.Error("c output must be absent")
	}
	if _, ok := res.Context.Output(passes.OutputPerfReport); ok {
		t.Error("perf_report must be absent: its producer was skipped")
	}
	if _, ok := res.Context.Output(passes.OutputTAC); !ok {
		t.Error("tac output must still be produced")
	}
	if !res.Bag.HasWarnings() {
		t.Error("expected a cascade-skip warning")
	}
	if !res.Success {
		t.Errorf("skips are not failures: %v", res.Bag.Items())
	}
}

func TestCompile_UnknownDisabledIsFatal(t *testing.T) {
	fset := source.NewFileSet()
	id := fset.Add("demo.plm", []byte(demoSrc))
	_, err := Compile(context.Background(), fset, id, Options{Disabled: []string{"ghost"}})
	if err == nil {
		t.Fatal("expected an error for unknown plugin name")
	}
}

func TestPlannedOrder_MatchesCompile(t *testing.T) {
	planned, err := PlannedOrder(Options{})
	if err != nil {
		t.Fatalf("PlannedOrder: %v", err)
	}
	res := compileSrc(t, demoSrc, Options{})
	if !reflect.DeepEqual(planned, res.Order) {
		t.Errorf("planned %v, actual %v", planned, res.Order)
	}
}
