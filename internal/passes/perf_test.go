package passes

import (
	"strings"
	"testing"

	"plume/internal/diag"
	"plume/internal/plugin"
)

func runProfiler(t *testing.T, src string) (PerfResult, *plugin.Context) {
	t.Helper()
	prog := mustParse(t, src)
	pctx := plugin.NewContext()
	if _, err := (CGenerator{}).Run(prog, pctx, diag.NewBag(16)); err != nil {
		t.Fatalf("CGenerator: %v", err)
	}
	res, err := PerfProfiler{}.Run(prog, pctx, diag.NewBag(16))
	if err != nil {
		t.Fatalf("PerfProfiler: %v", err)
	}
	return res.(PerfResult), pctx
}

func unitByName(t *testing.T, res PerfResult, name string) UnitPerf {
	t.Helper()
	for _, u := range res.Units {
		if u.Name == name {
			return u
		}
	}
	t.Fatalf("unit %q not profiled: %+v", name, res.Units)
	return UnitPerf{}
}

func TestPerfProfiler_NestedLoops(t *testing.T) {
	res, _ := runProfiler(t, `
var i, j;
begin
    i := 0;
    while i < 10 do
    begin
        j := 0;
        while j < 10 do
            j := j + 1;
        i := i + 1
    end
end.
`)
	main := unitByName(t, res, "main")
	if main.LoopDepth != 2 {
		t.Errorf("expected loop depth 2, got %d", main.LoopDepth)
	}
	if main.Complexity != "O(n^2)" {
		t.Errorf("expected O(n^2), got %s", main.Complexity)
	}
	if len(res.Recommendations) == 0 {
		t.Error("nested loops should produce a recommendation")
	}
}

func TestPerfProfiler_WriteInLoopRecommendsBatching(t *testing.T) {
	res, _ := runProfiler(t, `
var i;
begin
    i := 0;
    while i < 10 do
    begin
        write i;
        i := i + 1
    end
end.
`)
	found := false
	for _, r := range res.Recommendations {
		if strings.Contains(r, "batching") {
			found = true
		}
	}
	if !found {
		t.Errorf("write inside a loop should recommend batching: %v", res.Recommendations)
	}
}

func TestPerfProfiler_StraightLineIsConstant(t *testing.T) {
	res, _ := runProfiler(t, `
var a;
begin
    read a;
    write a + 1
end.
`)
	main := unitByName(t, res, "main")
	if main.Complexity != "O(1)" {
		t.Errorf("expected O(1), got %s", main.Complexity)
	}
	if res.Reads != 1 || res.Writes != 1 || res.Operations != 1 {
		t.Errorf("expected 1 read, 1 write, 1 operation; got %d/%d/%d",
			res.Reads, res.Writes, res.Operations)
	}
	if res.MaxCallDepth != 0 {
		t.Errorf("expected call depth 0, got %d", res.MaxCallDepth)
	}
}

func TestPerfProfiler_CallChainAndRecursion(t *testing.T) {
	res, _ := runProfiler(t, `
var n;
procedure inner;
begin
    n := n - 1
end;
procedure outer;
begin
    call inner
end;
procedure loop;
begin
    call loop
end;
begin
    call outer;
    call loop
end.
`)
	if res.MaxCallDepth != 2 {
		t.Errorf("expected max call depth 2 (main -> outer -> inner), got %d", res.MaxCallDepth)
	}
	if len(res.Recursive) != 1 || res.Recursive[0] != "loop" {
		t.Errorf("expected recursive [loop], got %v", res.Recursive)
	}
	found := false
	for _, r := range res.Recommendations {
		if strings.Contains(r, `"loop"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("recursion should produce a recommendation: %v", res.Recommendations)
	}
}

func TestPerfProfiler_InstrumentsC(t *testing.T) {
	_, pctx := runProfiler(t, `
var a;
begin
    read a;
    write a
end.
`)
	instr, ok := pctx.Output(OutputInstrC)
	if !ok {
		t.Fatal("instr_c output missing")
	}
	for _, snippet := range []string{
		"#include <time.h>",
		"clock_t __plume_start = clock();",
		"CLOCKS_PER_SEC",
	} {
		if !strings.Contains(instr, snippet) {
			t.Errorf("instrumented C missing %q:\n%s", snippet, instr)
		}
	}
	// Тайминг стартует сразу после входа в main и печатается до return.
	if strings.Index(instr, "__plume_start = clock()") > strings.Index(instr, "CLOCKS_PER_SEC") {
		t.Error("timing start must precede the elapsed print")
	}

	report, ok := pctx.Output(OutputPerfReport)
	if !ok {
		t.Fatal("perf_report output missing")
	}
	if !strings.Contains(report, "main: loop depth 0") {
		t.Errorf("report should list the main unit:\n%s", report)
	}
}

func TestPerfProfiler_RequiresCOutput(t *testing.T) {
	prog := mustParse(t, `write 1.`)
	if _, err := (PerfProfiler{}).Run(prog, plugin.NewContext(), diag.NewBag(16)); err == nil {
		t.Fatal("expected an error without the c output")
	}
}
