package tour

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trekora_back_end/internal/services"
	"trekora_back_end/internal/utils"
)

// UploadTourImages reçoit un multipart avec un champ "image_cover" et/ou
// plusieurs champs "images", pousse le tout dans MinIO et met le tour à jour.
func UploadTourImages(c *gin.Context) {
	tourID := c.Param("id")

	t, err := tours.GetByID(c.Request.Context(), tourID)
	if err != nil {
		respondError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formulaire multipart invalide"})
		return
	}

	uploaded := 0

	if covers := form.File["image_cover"]; len(covers) > 0 {
		url, err := services.UploadTourImage(c.Request.Context(), covers[0])
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Échec de l'upload de l'image de couverture"})
			return
		}
		t.ImageCover = url
		uploaded++
	}

	for _, file := range form.File["images"] {
		url, err := services.UploadTourImage(c.Request.Context(), file)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Échec de l'upload d'une image"})
			return
		}
		t.Images = append(t.Images, url)
		uploaded++
	}

	if uploaded == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune image fournie"})
		return
	}

	if err := tours.Update(c.Request.Context(), &t); err != nil {
		respondError(c, err)
		return
	}

	invalidateListCache()
	utils.LogAction(c, utils.ACTION_TOUR_UPDATE, utils.RESOURCE_TOUR, tourID, nil,
		gin.H{"images_uploaded": uploaded})

	c.JSON(http.StatusOK, gin.H{
		"message":     "Images mises à jour",
		"image_cover": t.ImageCover,
		"images":      t.Images,
	})
}
