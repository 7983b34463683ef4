// Package snapshot reads and writes migration snapshots on disk:
// items.json for the content model and assets.zip for asset metadata
// plus binaries.
package snapshot

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"

	"github.com/kontent-tools/kontent-migrate/pkg/logger"
	"github.com/kontent-tools/kontent-migrate/pkg/migrate"
)

var snapshotLog = logger.New("snapshot:snapshot")

const (
	// DefaultItemsFilename is the default path of the items snapshot.
	DefaultItemsFilename = "items.json"
	// DefaultAssetsFilename is the default path of the assets archive.
	DefaultAssetsFilename = "assets.zip"

	assetManifestName = "assets.json"
	assetSummaryName  = "assets.csv"
)

// itemsDocument is the on-disk shape of items.json.
type itemsDocument struct {
	Items []migrate.MigrationItem `json:"items"`
}

// WriteItems writes the snapshot's items to path as schema-validated
// JSON. Maps marshal in sorted key order, so the output is
// byte-reproducible for identical input.
func WriteItems(filename string, data *migrate.MigrationData) error {
	if err := migrate.ValidateMigrationData(data); err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(itemsDocument{Items: data.Items}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize items: %w", err)
	}
	if err := os.WriteFile(filename, append(encoded, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	snapshotLog.Printf("Wrote %d items to %s", len(data.Items), filename)
	return nil
}

// ReadItems reads and validates an items snapshot.
func ReadItems(filename string) ([]migrate.MigrationItem, error) {
	encoded, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	var document itemsDocument
	if err := json.Unmarshal(encoded, &document); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	if err := migrate.ValidateMigrationData(&migrate.MigrationData{Items: document.Items}); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	snapshotLog.Printf("Read %d items from %s", len(document.Items), filename)
	return document.Items, nil
}

// WriteAssets writes an assets archive: a JSON manifest with the asset
// metadata, a CSV summary for humans and one binary entry per asset
// named <codename><extension>.
func WriteAssets(filename string, assets []migrate.MigrationAsset) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)

	manifest, err := json.MarshalIndent(assets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize asset manifest: %w", err)
	}
	if err := writeZipEntry(archive, assetManifestName, manifest); err != nil {
		return err
	}
	if err := writeZipEntry(archive, assetSummaryName, assetSummary(assets)); err != nil {
		return err
	}
	for _, asset := range assets {
		if err := writeZipEntry(archive, binaryEntryName(asset), asset.BinaryData); err != nil {
			return err
		}
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", filename, err)
	}
	snapshotLog.Printf("Wrote %d assets to %s", len(assets), filename)
	return nil
}

// ReadAssets reads an assets archive back into MigrationAssets with
// their binaries attached.
func ReadAssets(filename string) ([]migrate.MigrationAsset, error) {
	archive, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer archive.Close()

	entries := make(map[string]*zip.File, len(archive.File))
	for _, entry := range archive.File {
		entries[entry.Name] = entry
	}

	assets, err := readManifest(filename, entries)
	if err != nil {
		return nil, err
	}

	for i := range assets {
		entry, ok := entries[binaryEntryName(assets[i])]
		if !ok {
			return nil, fmt.Errorf("%s carries no binary for asset %q", filename, assets[i].Codename)
		}
		if assets[i].BinaryData, err = readZipEntry(entry); err != nil {
			return nil, err
		}
	}
	snapshotLog.Printf("Read %d assets from %s", len(assets), filename)
	return assets, nil
}

// readManifest prefers the JSON manifest and falls back to the CSV
// summary, which carries enough to restore codename, filename and title.
func readManifest(filename string, entries map[string]*zip.File) ([]migrate.MigrationAsset, error) {
	if entry, ok := entries[assetManifestName]; ok {
		manifest, err := readZipEntry(entry)
		if err != nil {
			return nil, err
		}
		var assets []migrate.MigrationAsset
		if err := json.Unmarshal(manifest, &assets); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", assetManifestName, err)
		}
		return assets, nil
	}

	entry, ok := entries[assetSummaryName]
	if !ok {
		return nil, fmt.Errorf("%s carries neither %s nor %s", filename, assetManifestName, assetSummaryName)
	}
	summary, err := readZipEntry(entry)
	if err != nil {
		return nil, err
	}
	records, err := csv.NewReader(bytes.NewReader(summary)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", assetSummaryName, err)
	}
	var assets []migrate.MigrationAsset
	for i, record := range records {
		if i == 0 || len(record) < 2 {
			continue
		}
		asset := migrate.MigrationAsset{Codename: record[0], Filename: record[1]}
		if len(record) > 2 {
			asset.Title = record[2]
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// binaryEntryName derives the archive entry of an asset's binary from
// its codename and the original file extension.
func binaryEntryName(asset migrate.MigrationAsset) string {
	return asset.Codename + path.Ext(asset.Filename)
}

func assetSummary(assets []migrate.MigrationAsset) []byte {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	_ = writer.Write([]string{"codename", "filename", "title", "size"})
	for _, asset := range assets {
		_ = writer.Write([]string{asset.Codename, asset.Filename, asset.Title, strconv.Itoa(len(asset.BinaryData))})
	}
	writer.Flush()
	return buffer.Bytes()
}

func writeZipEntry(archive *zip.Writer, name string, content []byte) error {
	entry, err := archive.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", name, err)
	}
	if _, err := entry.Write(content); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", name, err)
	}
	return nil
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	reader, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
	}
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive entry %s: %w", entry.Name, err)
	}
	return content, nil
}
