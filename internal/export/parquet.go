package export

import (
	"fmt"
	"io"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const parquetParallelism = 4

func writeParquet(fw source.ParquetFile, rows []Row) error {
	pw, err := writer.NewParquetWriter(fw, new(Row), parquetParallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

// WriteParquet renders rows in memory and copies the file to w.
func WriteParquet(w io.Writer, rows []Row) error {
	fw := parquetbuffer.NewBufferFile()
	if err := writeParquet(fw, rows); err != nil {
		return err
	}
	if err := fw.Close(); err != nil {
		return err
	}
	_, err := w.Write(fw.Bytes())
	return err
}

// WriteParquetFile streams rows to a file at path.
func WriteParquetFile(path string, rows []Row) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeParquet(fw, rows); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
