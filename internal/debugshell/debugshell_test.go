package debugshell

import "testing"

func Test_Dispatch_Step_AdvancesByRequestedCount(t *testing.T) {
	t.Parallel()

	steps := 0
	var cycle uint64
	sh := New(Hooks{
		Step:  func() { steps++; cycle++ },
		Stats: func() string { return "ok" },
		Cycle: func() uint64 { return cycle },
	}, "")

	sh.dispatch("step 3")
	if steps != 3 {
		t.Errorf("steps = %d, want 3", steps)
	}
}

func Test_Dispatch_Quit_ReturnsTrue(t *testing.T) {
	t.Parallel()

	sh := New(Hooks{Step: func() {}, Stats: func() string { return "" }, Cycle: func() uint64 { return 0 }}, "")
	if !sh.dispatch("quit") {
		t.Error("dispatch(\"quit\") should signal exit")
	}
}

func Test_Dispatch_UnknownCommand_DoesNotQuit(t *testing.T) {
	t.Parallel()

	sh := New(Hooks{Step: func() {}, Stats: func() string { return "" }, Cycle: func() uint64 { return 0 }}, "")
	if sh.dispatch("frobnicate") {
		t.Error("an unknown command must not quit the shell")
	}
}
