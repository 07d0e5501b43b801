package objectstore

import "testing"

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Endpoint:   "localhost:9000",
		AccessKey:  "a",
		SecretKey:  "b",
		Region:     "us-east-1",
		BucketRuns: "baseline-runs",
		Prefix:     "runs",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	invalid := valid
	invalid.Endpoint = "http://localhost:9000"
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for scheme in endpoint")
	}

	invalid = valid
	invalid.BucketRuns = " "
	if err := invalid.Validate(); err == nil {
		t.Fatalf("Validate() expected error for blank bucket")
	}
}

func TestConfigFromEnvTrimsPrefix(t *testing.T) {
	t.Setenv("BASELINE_MINIO_PREFIX", "/mirror/runs/")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if cfg.Prefix != "mirror/runs" {
		t.Fatalf("Prefix=%q, want mirror/runs", cfg.Prefix)
	}
}
