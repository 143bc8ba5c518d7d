package usecase

// AnalysisPrompt is the fixed instruction sent with every image.
const AnalysisPrompt = `Please analyze the following image and provide the information in the strict JSON format below. ` +
	`Fill in each field with the data you can extract from the image. ` +
	`Always give values for every category. Do not write unknown for any category. ` +
	`The format should be as follows:

{
  "content": {
    "item_name": "",
    "calories": "",
    "score": "",
    "description": "",
    "sugar": "",
    "protein": "",
    "fat": "",
    "sustainable_alternatives": []
  }
}

Please include the item name, estimated calories, sustainability score out of 5, ` +
	`a brief description of the food item or plate of food, sugar (g), protein (g), fat (g), ` +
	`and a list of 5 sustainable alternatives. ` +
	`If the item is not food, reply only with the words "not food".`
