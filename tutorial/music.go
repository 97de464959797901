package tutorial

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	logging "github.com/ipfs/go-log/v2"
	"github.com/tidwall/gjson"

	"kiji-testing/bento"
	"kiji-testing/command"
	"kiji-testing/types"
	"kiji-testing/utils"
)

var log = logging.Logger("tutorial")

// Part numbers of the KijiMusic tutorial.
const (
	PartSetup = iota + 1
	PartBulkImport
	PartPlayCount
	PartSequentialPlayCount
)

// MusicOptions configure a KijiMusic tutorial run.
type MusicOptions struct {
	// WorkDir is the per-run scratch directory (report, leftovers).
	WorkDir string

	// LogDir receives the captured command streams.
	LogDir string

	// CommandTimeout bounds each tutorial command. Zero means
	// unbounded.
	CommandTimeout time.Duration

	// Parts restricts the run to a subset of tutorial parts.
	// Empty means all of them.
	Parts []int
}

// Music runs the KijiMusic tutorial against a started bento cluster.
type Music struct {
	kijiBento *bento.KijiBento
	cluster   *bento.Cluster
	opts      MusicOptions

	runID       int64
	hdfsBase    string
	instanceURI string
	env         []string
	report      *Report
}

// NewMusic initializes the tutorial runner. The cluster must already be
// started.
func NewMusic(kijiBento *bento.KijiBento, cluster *bento.Cluster, opts MusicOptions) *Music {
	runID := utils.NowMS()
	return &Music{
		kijiBento:   kijiBento,
		cluster:     cluster,
		opts:        opts,
		runID:       runID,
		hdfsBase:    fmt.Sprintf("kiji-music-%d", runID),
		instanceURI: fmt.Sprintf("kiji://.env/kiji_music_%d", runID),
		report:      NewReport("kiji-music", kijiBento.Version(), runID),
	}
}

// InstanceURI returns the kiji instance URI of this run.
func (m *Music) InstanceURI() string {
	return m.instanceURI
}

// Report returns the run report.
func (m *Music) Report() *Report {
	return m.report
}

// Setup builds the working environment for the tutorial commands.
func (m *Music) Setup() error {
	musicDir := m.kijiBento.MusicDir()
	if _, err := os.Stat(musicDir); err != nil {
		return types.Wrapf(types.ErrTutorialFailed, "KijiMusic root directory not found: %q", musicDir)
	}

	libDir := filepath.Join(musicDir, "lib")
	libs, err := filepath.Glob(filepath.Join(libDir, "*"))
	if err != nil {
		return types.Wrap(types.ErrTutorialFailed, err)
	}

	m.env = append(os.Environ(),
		"MUSIC_HOME="+musicDir,
		"LIBS_DIR="+libDir,
		"KIJI="+m.instanceURI,
		"KIJI_CLASSPATH="+strings.Join(libs, ":"),
		"HDFS_BASE="+m.hdfsBase,
	)
	return nil
}

// Run executes the selected tutorial parts in order, recording each
// step in the report.
func (m *Music) Run(ctx context.Context) error {
	parts := m.opts.Parts
	if len(parts) == 0 {
		parts = []int{PartSetup, PartBulkImport, PartPlayCount, PartSequentialPlayCount}
	}

	var firstErr error
	for _, part := range parts {
		var err error
		switch part {
		case PartSetup:
			err = m.Part1(ctx)
		case PartBulkImport:
			err = m.Part2(ctx)
		case PartPlayCount:
			err = m.Part3(ctx)
		case PartSequentialPlayCount:
			err = m.Part4(ctx)
		default:
			err = types.Wrapf(types.ErrInvalidParameters, "unknown tutorial part %d", part)
		}
		if err != nil {
			color.Red("part %d: FAILED", part)
			if firstErr == nil {
				firstErr = err
			}
			break
		}
		color.Green("part %d: OK", part)
	}

	m.report.Finish()
	if path, err := m.report.Write(m.opts.WorkDir); err != nil {
		log.Warnf("Writing run report: %v", err)
	} else {
		log.Infof("Run report written to %q", path)
	}

	if firstErr != nil {
		return types.Wrapf(types.ErrTutorialFailed, "%v", firstErr)
	}
	return nil
}

// step runs one named kiji command line inside the bento environment
// and records it.
func (m *Music) step(ctx context.Context, name, shell string) (*command.Command, error) {
	start := utils.NowMS()
	cmd, err := command.Kiji(ctx, command.Options{
		WorkDir: m.kijiBento.Path(),
		Env:     m.env,
		LogDir:  m.opts.LogDir,
		Timeout: m.opts.CommandTimeout,
	}, shell)

	result := StepResult{
		Name:       name,
		Command:    strings.TrimSpace(shell),
		DurationMS: utils.NowMS() - start,
	}
	if cmd != nil {
		result.ExitCode = cmd.ExitCode()
	}
	if err != nil {
		result.Error = err.Error()
	}
	m.report.Add(result)
	return cmd, err
}

// check records an expectation failure against the last recorded step.
func (m *Music) check(err error) error {
	if err != nil && len(m.report.Steps) > 0 {
		last := &m.report.Steps[len(m.report.Steps)-1]
		if last.Error == "" {
			last.Error = err.Error()
		}
	}
	return err
}

// Part1 runs the setup part of the KijiMusic tutorial:
// instance creation, table DDL, data generation and HDFS upload.
func (m *Music) Part1(ctx context.Context) error {
	install, err := m.step(ctx, "install", "kiji install --kiji=${KIJI}")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, install.ExitCode())); err != nil {
		return err
	}
	if err := m.check(ExpectContains("Successfully created kiji instance: ", install.OutputText())); err != nil {
		return err
	}

	createTable, err := m.step(ctx, "create-table",
		"kiji-schema-shell --kiji=${KIJI} --file=${MUSIC_HOME}/music_schema.ddl")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, createTable.ExitCode())); err != nil {
		return err
	}

	generate, err := m.step(ctx, "generate-data",
		"rm -f ${MUSIC_HOME}/example_data/* && "+
			"${MUSIC_HOME}/bin/data_generator.py --output-dir=${MUSIC_HOME}/example_data/")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, generate.ExitCode())); err != nil {
		return err
	}
	if err := m.check(m.validateGeneratedData()); err != nil {
		return err
	}

	mkdir, err := m.step(ctx, "hdfs-mkdir", "hadoop fs -mkdir ${HDFS_BASE}/kiji-mr-tutorial/")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, mkdir.ExitCode())); err != nil {
		return err
	}

	cp, err := m.step(ctx, "hdfs-upload",
		"hadoop fs -copyFromLocal ${MUSIC_HOME}/example_data/*.json ${HDFS_BASE}/kiji-mr-tutorial/")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, cp.ExitCode())); err != nil {
		return err
	}

	ls, err := m.step(ctx, "list-tables", "kiji ls ${KIJI}")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, ls.ExitCode())); err != nil {
		return err
	}
	for _, table := range []string{"songs", "users"} {
		if err := m.check(ExpectContains(table, ls.OutputText())); err != nil {
			return types.Wrapf(types.ErrExpectationFailed, "missing table %q: %v", table, err)
		}
	}
	return nil
}

// validateGeneratedData spot-checks the generated song metadata
// records: every line must be a JSON object carrying the fields the
// bulk importer expects.
func (m *Music) validateGeneratedData() error {
	path := filepath.Join(m.kijiBento.MusicDir(), "example_data", "song-metadata.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Wrapf(types.ErrExpectationFailed, "missing generated data: %v", err)
	}
	lines := nonEmpty(strings.Split(string(data), "\n"))
	if len(lines) == 0 {
		return types.Wrapf(types.ErrExpectationFailed, "generated data file %q is empty", path)
	}
	for i, line := range lines {
		if !gjson.Valid(line) {
			return types.Wrapf(types.ErrExpectationFailed, "%s:%d is not valid JSON", path, i+1)
		}
		record := gjson.Parse(line)
		for _, field := range []string{"song_id", "song_name"} {
			if !record.Get(field).Exists() {
				return types.Wrapf(types.ErrExpectationFailed, "%s:%d misses field %q", path, i+1, field)
			}
		}
	}
	log.Debugf("Validated %d generated song metadata records", len(lines))
	return nil
}

// Part2 runs the bulk-importing part of the KijiMusic tutorial.
func (m *Music) Part2(ctx context.Context) error {
	bulkImport, err := m.step(ctx, "bulk-import-songs", `
	kiji bulk-import \
	    --importer=org.kiji.examples.music.bulkimport.SongMetadataBulkImporter \
	    --lib=${LIBS_DIR} \
	    --input="format=text file=${HDFS_BASE}/kiji-mr-tutorial/song-metadata.json" \
	    --output="format=kiji table=${KIJI}/songs nsplits=1"`)
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, bulkImport.ExitCode())); err != nil {
		return err
	}
	// The bulk-import CLI tool writes its progress to stderr only.
	if err := m.check(ExpectContains("Total input paths to process : 1", bulkImport.ErrorText())); err != nil {
		return err
	}
	if err := m.check(ExpectContains("BULKIMPORTER_RECORDS_PROCESSED=50", bulkImport.ErrorText())); err != nil {
		return err
	}

	scanSongs, err := m.step(ctx, "scan-songs", "kiji scan ${KIJI}/songs --max-rows=3")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, scanSongs.ExitCode())); err != nil {
		return err
	}

	// Using table import descriptors:
	cp, err := m.step(ctx, "upload-descriptor",
		"hadoop fs -copyFromLocal "+
			"${MUSIC_HOME}/import/song-plays-import-descriptor.json ${HDFS_BASE}/kiji-mr-tutorial/")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, cp.ExitCode())); err != nil {
		return err
	}

	bulkImportPlays, err := m.step(ctx, "bulk-import-plays", `
	kiji bulk-import \
	    -Dkiji.import.text.input.descriptor.path=${HDFS_BASE}/kiji-mr-tutorial/song-plays-import-descriptor.json \
	    --importer=org.kiji.mapreduce.lib.bulkimport.JSONBulkImporter \
	    --input="format=text file=${HDFS_BASE}/kiji-mr-tutorial/song-plays.json" \
	    --output="format=kiji table=${KIJI}/users nsplits=1" \
	    --lib=${LIBS_DIR}`)
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, bulkImportPlays.ExitCode())); err != nil {
		return err
	}
	if err := m.check(ExpectContains("Total input paths to process : 1", bulkImportPlays.ErrorText())); err != nil {
		return err
	}
	// The number of records changes from run to run.
	if err := m.check(ExpectContains("BULKIMPORTER_RECORDS_PROCESSED=", bulkImportPlays.ErrorText())); err != nil {
		return err
	}

	scanUsers, err := m.step(ctx, "scan-users", "kiji scan ${KIJI}/users --max-rows=3")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, scanUsers.ExitCode())); err != nil {
		return err
	}
	lines := scanUsers.OutputLines()
	if err := m.check(ExpectRegex(`Scanning kiji table: kiji://`, lines[0])); err != nil {
		return err
	}
	if len(lines) < 3*3+1 {
		return m.check(types.Wrapf(types.ErrExpectationFailed,
			"expected at least %d scan output lines, got %d", 3*3+1, len(lines)))
	}
	// Each scanned row is an entity line, a value line and a blank.
	for row := 0; row < 3; row++ {
		if err := m.check(ExpectRegex(`entity-id=\['user-\d+'\] \[\d+\] info:track_plays$`, lines[1+row*3])); err != nil {
			return err
		}
		if err := m.check(ExpectRegex(`\s*song-\d+$`, lines[2+row*3])); err != nil {
			return err
		}
		if err := m.check(ExpectRegex(`$`, lines[3+row*3])); err != nil {
			return err
		}
	}
	return nil
}

// Part3 runs the play-count part of the KijiMusic tutorial.
func (m *Music) Part3(ctx context.Context) error {
	gather, err := m.step(ctx, "gather-play-count", `
	kiji gather \
	    --gatherer=org.kiji.examples.music.gather.SongPlayCounter \
	    --reducer=org.kiji.mapreduce.lib.reduce.LongSumReducer \
	    --input="format=kiji table=${KIJI}/users" \
	    --output="format=text file=${HDFS_BASE}/output.txt_file nsplits=2" \
	    --lib=${LIBS_DIR}`)
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, gather.ExitCode())); err != nil {
		return err
	}

	fsText, err := m.step(ctx, "read-play-count",
		"hadoop fs -text ${HDFS_BASE}/output.txt_file/part-r-00000 | head -3")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, fsText.ExitCode())); err != nil {
		return err
	}
	lines := nonEmpty(fsText.OutputLines())
	if err := m.check(Expect(3, len(lines))); err != nil {
		return err
	}
	for _, line := range lines {
		if err := m.check(ExpectRegex(`song-\d+\t\d+$`, line)); err != nil {
			return err
		}
	}
	return nil
}

// Part4 runs the sequential play-count part of the KijiMusic tutorial.
func (m *Music) Part4(ctx context.Context) error {
	gather, err := m.step(ctx, "gather-sequential-play-count", `
	kiji gather \
	    --gatherer=org.kiji.examples.music.gather.SequentialPlayCounter \
	    --reducer=org.kiji.examples.music.reduce.SequentialPlayCountReducer \
	    --input="format=kiji table=${KIJI}/users" \
	    --output="format=avrokv file=${HDFS_BASE}/output.sequentialPlayCount nsplits=2" \
	    --lib=${LIBS_DIR}`)
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, gather.ExitCode())); err != nil {
		return err
	}

	ls, err := m.step(ctx, "list-sequential-output",
		"hadoop fs -ls ${HDFS_BASE}/output.sequentialPlayCount")
	if err != nil {
		return err
	}
	if err := m.check(Expect(0, ls.ExitCode())); err != nil {
		return err
	}
	if err := m.check(ExpectContains("part-r-", ls.OutputText())); err != nil {
		return err
	}
	return nil
}

// Cleanup stops the cluster and wipes the per-run working directory.
func (m *Music) Cleanup() error {
	if err := m.cluster.Stop(); err != nil {
		return err
	}
	return os.RemoveAll(m.opts.WorkDir)
}
