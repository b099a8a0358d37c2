package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSimulate(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{
		"simulate",
		"-i", "../../../netfile/testdata/order.yaml",
		"-n", "500",
		"--seed", "11",
		"-w", "3",
		"-o", "json",
	})
	if err := Execute(); err != nil {
		t.Fatal(err)
	}
	var rep struct {
		RunID   string `json:"runId"`
		Trials  int    `json:"trials"`
		Entries []struct {
			Trace   []string `json:"trace"`
			Count   int      `json:"count"`
			AvgTime float64  `json:"avgTime"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.RunID == "" || rep.Trials != 500 {
		t.Fatalf("report = %+v", rep)
	}
	if len(rep.Entries) != 2 {
		t.Fatalf("expected pay and cancel paths, got %+v", rep.Entries)
	}
	top := rep.Entries[0]
	if len(top.Trace) != 3 || top.Trace[1] != "Pay" || top.Count < 400 {
		t.Errorf("most frequent path = %+v", top)
	}
	if top.AvgTime < 1 || top.AvgTime > 2 {
		t.Errorf("receive takes [1, 2], mean %v", top.AvgTime)
	}
}

func TestSimulate_BadOutput(t *testing.T) {
	defer func() { output = "table" }()
	rootCmd.SetArgs([]string{
		"simulate",
		"-i", "../../../netfile/testdata/order.yaml",
		"-n", "10",
		"-o", "yaml",
	})
	if err := Execute(); err == nil {
		t.Error("expected an unknown report format to fail")
	}
}

