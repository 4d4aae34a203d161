package record

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// MoveEval is one ply of a recorded game. Scores are from sente's side.
type MoveEval struct {
	Ply        int32  `parquet:"name=ply, type=INT32"`
	Notation   string `parquet:"name=notation, type=BYTE_ARRAY, convertedtype=UTF8"`
	USI        string `parquet:"name=usi, type=BYTE_ARRAY, convertedtype=UTF8"`
	SFEN       string `parquet:"name=sfen, type=BYTE_ARRAY, convertedtype=UTF8"`
	Packed     string `parquet:"name=packed, type=BYTE_ARRAY, convertedtype=UTF8"`
	Material   int32  `parquet:"name=material, type=INT32"`
	ScoreType  string `parquet:"name=score_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	ScoreValue int32  `parquet:"name=score_value, type=INT32"`
	Nodes      int64  `parquet:"name=nodes, type=INT64"`
	Pruned     int64  `parquet:"name=pruned, type=INT64"`
}

type GameRecord struct {
	GameID    string     `parquet:"name=game_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	SenteName string     `parquet:"name=sente_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	GoteName  string     `parquet:"name=gote_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartSFEN string     `parquet:"name=start_sfen, type=BYTE_ARRAY, convertedtype=UTF8"`
	Result    string     `parquet:"name=result, type=BYTE_ARRAY, convertedtype=UTF8"`
	WinReason string     `parquet:"name=win_reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	MoveCount int32      `parquet:"name=move_count, type=INT32"`
	MoveEvals []MoveEval `parquet:"name=move_evals, type=LIST"`
}

const (
	ResultSenteWin = "sente_win"
	ResultGoteWin  = "gote_win"
	ResultDraw     = "draw"
	ResultAbort    = "abort"
	ResultUnknown  = "unknown"
)

type ParquetSchema struct {
	Name   string         `json:"name"`
	Fields []ParquetField `json:"fields"`
}

type ParquetField struct {
	Name     string      `json:"name"`
	Type     interface{} `json:"type"`
	Nullable bool        `json:"nullable"`
}

//go:embed schema.json
var schemaJSON []byte

// Schema returns the published column layout of GameRecord files.
func Schema() (ParquetSchema, error) {
	var schema ParquetSchema
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return ParquetSchema{}, err
	}
	return schema, nil
}

// WriteParquet drains records into a Snappy-compressed parquet file.
func WriteParquet(path string, records <-chan GameRecord, parallel int64) error {
	schema, err := Schema()
	if err != nil {
		return err
	}
	if err := validateSchema(schema, GameRecord{}); err != nil {
		return err
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(GameRecord), parallel)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for record := range records {
		if err := parquetWriter.Write(record); err != nil {
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	return fileWriter.Close()
}

// ReadParquet loads every GameRecord row from path.
func ReadParquet(path string, parallel int64) ([]GameRecord, error) {
	fileReader, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(GameRecord), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	records := make([]GameRecord, 0, num)
	batchSize := 1024
	for offset := 0; offset < num; offset += batchSize {
		if remain := num - offset; remain < batchSize {
			batchSize = remain
		}
		batch := make([]GameRecord, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

func validateSchema(schema ParquetSchema, sample any) error {
	schemaFields := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		schemaFields[field.Name] = struct{}{}
	}
	structFields := structParquetFieldNames(sample)
	missing := diffKeys(schemaFields, structFields)
	extra := diffKeys(structFields, schemaFields)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("parquet schema mismatch: missing=%v extra=%v", missing, extra)
	}
	return nil
}

func structParquetFieldNames(sample any) map[string]struct{} {
	fields := map[string]struct{}{}
	v := reflect.TypeOf(sample)
	for i := 0; i < v.NumField(); i++ {
		if name := parseParquetName(v.Field(i).Tag.Get("parquet")); name != "" {
			fields[name] = struct{}{}
		}
	}
	return fields
}

func parseParquetName(tag string) string {
	for _, part := range strings.Split(tag, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && kv[0] == "name" {
			return kv[1]
		}
	}
	return ""
}

func diffKeys(a, b map[string]struct{}) []string {
	var diff []string
	for key := range a {
		if _, ok := b[key]; !ok {
			diff = append(diff, key)
		}
	}
	return diff
}
