package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/osgrady/radreport/internal/genclient"
	"github.com/osgrady/radreport/internal/render"
	"github.com/osgrady/radreport/internal/report"
	"github.com/osgrady/radreport/internal/reportstore"
	"github.com/osgrady/radreport/internal/telemetry"
)

func main() {
	outFlag := flag.String("out", "", "write the combined batch artifact to this file (default stdout)")
	dbFlag := flag.String("db", "", "archive the batch in this SQLite database")
	pdfDirFlag := flag.String("pdf-dir", "", "render one PDF per case into this directory")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("usage: radreport [flags] case-file...")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "radreport")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("radreport telemetry_shutdown err=%v", err)
		}
	}()

	backend, err := genclient.NewAnthropicBackendFromEnv()
	if err != nil {
		log.Fatalf("backend: %v", err)
	}
	orch, err := report.NewOrchestrator(genclient.New(backend, genclient.DefaultConfig()), report.DefaultConfig())
	if err != nil {
		log.Fatalf("orchestrator: %v", err)
	}

	cases := make([]report.CaseInput, 0, len(files))
	for _, path := range files {
		blob, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read case %s: %v", path, err)
		}
		label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cases = append(cases, report.CaseInput{Label: label, Text: string(blob)})
	}

	log.Printf("radreport batch_start cases=%d", len(cases))
	batch := report.NewBatchCoordinator(orch).ProcessBatch(ctx, cases)
	artifact := report.BuildBatchArtifact(batch)

	if *outFlag == "" {
		fmt.Println(artifact)
	} else if err := os.WriteFile(*outFlag, []byte(artifact), 0o644); err != nil {
		log.Fatalf("write artifact: %v", err)
	}

	if *dbFlag != "" {
		store, err := reportstore.New(*dbFlag)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer store.Close()
		batchID, err := store.SaveBatch(batch, artifact)
		if err != nil {
			log.Fatalf("archive batch: %v", err)
		}
		log.Printf("radreport batch_archived id=%d db=%s", batchID, *dbFlag)
	}

	if *pdfDirFlag != "" {
		if err := os.MkdirAll(*pdfDirFlag, 0o755); err != nil {
			log.Fatalf("create pdf dir: %v", err)
		}
		renderer := render.NewChromiumPDFRenderer()
		cfg := orch.Config()
		for _, entry := range batch.Entries {
			pdf, err := renderer.Render(ctx, report.BuildReportMarkdown(cfg, entry.Report), entry.Report.Degraded)
			if err != nil {
				log.Printf("radreport pdf_failed label=%q err=%v", entry.Label, err)
				continue
			}
			path := filepath.Join(*pdfDirFlag, entry.Label+".pdf")
			if err := os.WriteFile(path, pdf, 0o644); err != nil {
				log.Printf("radreport pdf_write_failed path=%s err=%v", path, err)
			}
		}
	}

	degraded := 0
	for _, entry := range batch.Entries {
		if entry.Report.Degraded {
			degraded++
		}
	}
	log.Printf("radreport batch_done cases=%d degraded=%d", len(batch.Entries), degraded)
}
