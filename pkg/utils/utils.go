package utils

import (
	"context"
	"errors"
	"math"

	"github.com/joho/godotenv"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/constant"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const DefaultPageSize = 20

var ErrPageOutOfRange = errors.New(constant.PAGE_NUMBER_OUT_OF_RANGE)

// LoadEnv loads .env into the process environment when the file exists.
func LoadEnv(log zerolog.Logger) {
	if err := godotenv.Load(); err != nil {
		// Environment variables can come from Docker Compose or the system.
		log.Info().Msg(".env file not found, using system environment variables")
	}
}

// Pagination loads page pageNumber (1-based) of pageSize items matching
// query into item, ordered by order, and returns the total page count.
// An empty result set has zero pages and is not an error.
func Pagination(item interface{}, pageNumber, pageSize int, order string, db *gorm.DB, c context.Context, query interface{}, args ...interface{}) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var totalCount int64
	if err := db.WithContext(c).Model(item).Where(query, args...).Count(&totalCount).Error; err != nil {
		return 0, err
	}
	if totalCount == 0 {
		return 0, nil
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(pageSize)))
	if pageNumber > totalPages || pageNumber <= 0 {
		return 0, ErrPageOutOfRange
	}

	offset := (pageNumber - 1) * pageSize
	if err := db.WithContext(c).Where(query, args...).Order(order).Limit(pageSize).Offset(offset).Find(item).Error; err != nil {
		return 0, err
	}
	return totalPages, nil
}
