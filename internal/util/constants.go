package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// NotAnswered 提交时缺失答案的占位值
const NotAnswered = "Not Answered"
