// Package all registers every driver in the module. Programs that want
// the full driver set blank-import it; programs that want a subset import
// the individual driver packages instead.
package all

import (
	_ "github.com/leapstack-labs/rsql/pkg/drivers/arrow"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/avro"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/brotli"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/bzip2"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/clickhouse"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/cockroachdb"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/csv"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/delimited"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/duckdb"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/dynamodb"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/excel"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/file"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/flightsql"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/fwf"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/gzip"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/http"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/https"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/json"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/jsonl"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/lz4"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/mariadb"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/mysql"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/ods"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/parquet"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/postgres"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/redshift"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/s3"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/snowflake"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/sqlite"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/sqlserver"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/tsv"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/xml"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/xz"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/yaml"
	_ "github.com/leapstack-labs/rsql/pkg/drivers/zstd"
)
