package lib

const (
	// PAGE_SIZE equals directio.BlockSize so one page maps to one O_DIRECT block.
	PAGE_SIZE = 4096

	MAX_BUFFER_POOL_SIZE_IN_MB = 300
	MAX_BUFFER_POOL_SIZE       = MAX_BUFFER_POOL_SIZE_IN_MB * 1024 * 1024 / PAGE_SIZE

	DEFAULT_POOL_SIZE  = 64
	DEFAULT_REPLACER_K = 2

	DB_DIR         = "godb_data"
	PAGE_FILE_NAME = "godb.page"
	LOG_FILE_NAME  = "godb.log"
)
