package storage

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func testMeta() RunMetadata {
	return RunMetadata{
		Seed:       42,
		Attempts:   3,
		Integrator: "rk4",
		U0:         []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
		Dt:         0.05,
		Cxy:        1.0,
		A1:         6, A2: 0.2, A3: 5.7,
		B1: 10, B2: 28, B3: 8.0 / 3.0,
		Npts:      4,
		Stride:    2,
		Transient: 100,
	}
}

func testTrajectory() *mat.Dense {
	return mat.NewDense(4, 6, []float64{
		1.5, -2.25, 0.125, 3, 4, 5,
		-1, 2, -3, 4, -5, 6,
		0.001, 0.002, 0.003, 0.004, 0.005, 0.006,
		10, 20, 30, 40, 50, 60,
	})
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save(testMeta(), testTrajectory())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Cxy != 1.0 || meta.Attempts != 3 || meta.Seed != 42 {
		t.Errorf("metadata round trip lost fields: %+v", meta)
	}
	if len(meta.U0) != 6 {
		t.Errorf("u0 round trip: %v", meta.U0)
	}

	traj, header, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(header) != 6 || header[0] != "x1" || header[3] != "y1" {
		t.Errorf("unexpected header: %v", header)
	}
	if !mat.Equal(traj, testTrajectory()) {
		t.Error("trajectory round trip not exact")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty store, got %d runs", len(runs))
	}

	if _, err := st.Save(testMeta(), testTrajectory()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(testMeta(), testTrajectory()); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("run_nope"); err == nil {
		t.Error("expected error for missing run")
	}
}
