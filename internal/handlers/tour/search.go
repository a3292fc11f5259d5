package tour

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trekora_back_end/internal/services"
)

// SearchTours interroge Elasticsearch sur name, summary et description.
func SearchTours(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	results, err := services.SearchTours(query)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"results": []gin.H{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
